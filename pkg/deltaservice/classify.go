package deltaservice

import "strings"

// compoundExtensions are checked before simple ones; the longest matching
// suffix wins (spec.md §4.1: "Compound matches win over simple on the
// longest suffix").
var compoundExtensions = []string{
	".tar.gz", ".tar.bz2", ".tar.xz", ".tar.zst",
}

// simpleExtensions is the configurable set of delta-candidate single-suffix
// extensions: software release archives, installers, and disk images.
var simpleExtensions = map[string]bool{
	".zip": true, ".tar": true, ".jar": true, ".war": true, ".ear": true,
	".gz": true, ".bz2": true, ".xz": true, ".zst": true,
	".exe": true, ".msi": true, ".dmg": true, ".pkg": true, ".deb": true, ".rpm": true,
	".iso": true, ".img": true, ".vhd": true, ".vmdk": true,
	".whl": true, ".gem": true, ".nupkg": true,
}

// shouldUseDelta classifies filename by extension membership, implementing
// spec.md §4.1 step 2.
func shouldUseDelta(filename string) bool {
	lower := strings.ToLower(filename)

	for _, ext := range compoundExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	if idx := strings.LastIndex(lower, "."); idx >= 0 {
		return simpleExtensions[lower[idx:]]
	}
	return false
}
