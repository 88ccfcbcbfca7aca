// Package diffengine defines the binary-diff port DeltaService consumes to
// encode a delta between a reference and a target, and to decode one back
// into the original bytes (spec.md §6.2). The algorithm itself is out of
// scope; this package only ships adapters over an external tool (xdelta3)
// and an in-process fallback.
package diffengine

import "context"

// Engine encodes a delta between a reference and a target, and decodes one
// back into the reconstructed original.
type Engine interface {
	// Encode writes a delta artifact at outDeltaPath representing the
	// transformation from referencePath to targetPath. Returns the literal
	// command/invocation string recorded in DeltaMeta.DeltaCmd for
	// diagnostics.
	Encode(ctx context.Context, referencePath, targetPath, outDeltaPath string) (cmd string, err error)

	// Decode reconstructs the original bytes at outPath from referencePath
	// and deltaPath.
	Decode(ctx context.Context, referencePath, deltaPath, outPath string) error
}
