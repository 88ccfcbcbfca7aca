package diffengine

import (
	"context"
	"fmt"
	"os/exec"

	"deltaglider/pkg/helper/errors"
)

// XDelta3Engine shells out to the xdelta3 binary, the reference
// implementation named by spec.md §6.2 (`-e -9 -s` for encode). Any tool
// producing a (reference, target) -> delta transform invertible with
// bit-exactness satisfies the port; this is the one the spec calls out by
// name.
type XDelta3Engine struct {
	// BinaryPath overrides the xdelta3 executable looked up on PATH.
	BinaryPath string
}

// NewXDelta3Engine constructs the default xdelta3-backed engine.
func NewXDelta3Engine() *XDelta3Engine {
	return &XDelta3Engine{BinaryPath: "xdelta3"}
}

func (e *XDelta3Engine) bin() string {
	if e.BinaryPath != "" {
		return e.BinaryPath
	}
	return "xdelta3"
}

func (e *XDelta3Engine) Encode(ctx context.Context, referencePath, targetPath, outDeltaPath string) (string, error) {
	args := []string{"-e", "-9", "-f", "-s", referencePath, targetPath, outDeltaPath}
	cmdStr := fmt.Sprintf("%s %s", e.bin(), joinArgs(args))

	cmd := exec.CommandContext(ctx, e.bin(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", errors.DiffEncodeFailuref("xdelta3 encode failed: %s: %s", err, string(out))
	}
	return cmdStr, nil
}

func (e *XDelta3Engine) Decode(ctx context.Context, referencePath, deltaPath, outPath string) error {
	args := []string{"-d", "-f", "-s", referencePath, deltaPath, outPath}
	cmd := exec.CommandContext(ctx, e.bin(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.DiffDecodeFailuref("xdelta3 decode failed: %s: %s", err, string(out))
	}
	return nil
}

func joinArgs(args []string) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += " "
		}
		s += a
	}
	return s
}
