//go:build !cgo

package codegen

import (
	"context"

	"github.com/wippyai/jaot/errors"
)

// ErrNoCGO is returned by Verify when tree-sitter is not compiled in.
var ErrNoCGO = errors.Unsupported(errors.PhaseCodegen, "source verification requires CGO (tree-sitter)")

// Verify is unavailable without CGO.
func Verify(ctx context.Context, src []byte) error {
	return ErrNoCGO
}
