package deltaservice

import "strconv"

// metadataLookup resolves a logical metadata field name against both the
// canonical dg-prefixed form and the bare legacy form, per spec.md §3:
// "Metadata keys are stored with a canonical and an alternate namespace
// (bare name and a dg- prefix); readers must accept either."
func metadataLookup(m map[string]string, name string) (string, bool) {
	if v, ok := m["dg-"+name]; ok {
		return v, true
	}
	if v, ok := m[name]; ok {
		return v, true
	}
	return "", false
}

// referenceMetaToMap writes ReferenceMeta using the canonical dg- prefixed
// form, matching the original source's persisted convention (spec.md §9,
// "Metadata key duality").
func referenceMetaToMap(m ReferenceMeta) map[string]string {
	return map[string]string{
		"dg-tool":        m.Tool,
		"dg-source-name": m.SourceName,
		"dg-file-sha256": m.FileSHA256,
		"dg-created-at":  m.CreatedAt,
	}
}

func referenceMetaFromMap(m map[string]string) ReferenceMeta {
	tool, _ := metadataLookup(m, "tool")
	source, _ := metadataLookup(m, "source-name")
	sha, _ := metadataLookup(m, "file-sha256")
	created, _ := metadataLookup(m, "created-at")
	return ReferenceMeta{Tool: tool, SourceName: source, FileSHA256: sha, CreatedAt: created}
}

func deltaMetaToMap(m DeltaMeta) map[string]string {
	out := map[string]string{
		"dg-tool":          m.Tool,
		"dg-original-name": m.OriginalName,
		"dg-file-sha256":   m.FileSHA256,
		"dg-file-size":     itoa64(m.FileSize),
		"dg-created-at":    m.CreatedAt,
		"dg-ref-key":       m.RefKey,
		"dg-ref-sha256":    m.RefSHA256,
		"dg-delta-size":    itoa64(m.DeltaSize),
		"dg-delta-cmd":     m.DeltaCmd,
	}
	if m.Note != "" {
		out["dg-note"] = m.Note
	}
	return out
}

func deltaMetaFromMap(m map[string]string) DeltaMeta {
	tool, _ := metadataLookup(m, "tool")
	orig, _ := metadataLookup(m, "original-name")
	sha, _ := metadataLookup(m, "file-sha256")
	sizeStr, _ := metadataLookup(m, "file-size")
	created, _ := metadataLookup(m, "created-at")
	refKey, _ := metadataLookup(m, "ref-key")
	refSHA, _ := metadataLookup(m, "ref-sha256")
	deltaSizeStr, _ := metadataLookup(m, "delta-size")
	deltaCmd, _ := metadataLookup(m, "delta-cmd")
	note, _ := metadataLookup(m, "note")

	return DeltaMeta{
		Tool:         tool,
		OriginalName: orig,
		FileSHA256:   sha,
		FileSize:     atoi64(sizeStr),
		CreatedAt:    created,
		RefKey:       refKey,
		RefSHA256:    refSHA,
		DeltaSize:    atoi64(deltaSizeStr),
		DeltaCmd:     deltaCmd,
		Note:         note,
	}
}

func directMetaToMap(m DirectMeta) map[string]string {
	return map[string]string{
		"dg-tool":          m.Tool,
		"dg-original-name": m.OriginalName,
		"dg-file-sha256":   m.FileSHA256,
		"dg-file-size":     itoa64(m.FileSize),
		"dg-created-at":    m.CreatedAt,
		"dg-compression":   m.Compression,
	}
}

func directMetaFromMap(m map[string]string) DirectMeta {
	tool, _ := metadataLookup(m, "tool")
	orig, _ := metadataLookup(m, "original-name")
	sha, _ := metadataLookup(m, "file-sha256")
	sizeStr, _ := metadataLookup(m, "file-size")
	created, _ := metadataLookup(m, "created-at")
	compression, _ := metadataLookup(m, "compression")
	return DirectMeta{Tool: tool, OriginalName: orig, FileSHA256: sha, FileSize: atoi64(sizeStr), CreatedAt: created, Compression: compression}
}

func rehydratedTempMetaToMap(m RehydratedTempMeta) map[string]string {
	return map[string]string{
		"dg-expires-at":        m.ExpiresAt,
		"dg-original-key":      m.OriginalKey,
		"dg-original-filename": m.OriginalFilename,
		"dg-rehydrated":        m.Rehydrated,
		"dg-created-at":        m.CreatedAt,
	}
}

// isForeignObject reports whether metadata lacks any DeltaGlider marker,
// per spec.md §3: "An object without DeltaGlider metadata (dg-file-sha256
// absent) is a foreign object."
func isForeignObject(m map[string]string) bool {
	_, ok := metadataLookup(m, "file-sha256")
	return !ok
}

func isDirectObject(m map[string]string) bool {
	compression, ok := metadataLookup(m, "compression")
	return ok && compression == "none"
}

func itoa64(n int64) string { return strconv.FormatInt(n, 10) }

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
