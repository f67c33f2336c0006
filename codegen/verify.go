//go:build cgo

package codegen

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/wippyai/jaot/errors"
)

// Verify parses src as C++ and reports the first syntax error.
func Verify(ctx context.Context, src []byte) error {
	parser := sitter.NewParser()
	parser.SetLanguage(cpp.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return errors.Wrap(errors.PhaseCodegen, errors.KindInvalidData, err, "parse generated source")
	}
	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pt := bad.StartPoint()
	return errors.New(errors.PhaseCodegen, errors.KindInvalidData).
		Value(bad.Content(src)).
		Detail("generated source does not parse: %s at line %d column %d", describe(bad), pt.Row+1, pt.Column+1).
		Build()
}

// firstError finds the earliest ERROR or MISSING node in document order.
func firstError(root *sitter.Node) *sitter.Node {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsError() || n.IsMissing() {
			return n
		}
		if !n.HasError() {
			continue
		}
		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}
	return nil
}

func describe(n *sitter.Node) string {
	if n.IsMissing() {
		return fmt.Sprintf("missing %s", n.Type())
	}
	return "unexpected input"
}
