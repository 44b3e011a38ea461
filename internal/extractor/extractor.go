// Package extractor walks a parsed Python syntax tree and enumerates the
// public, module-level symbols it defines: classes, functions, and
// module-level assigned names, including ones nested inside try/if
// guards, which real-world packages use heavily for optional imports.
package extractor

import (
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/davidrios/pyimportls/internal/parser"
)

// ErrNotInitialized is returned when Extract is called against a Handle
// whose kind-id cache was never populated (the zero Handle).
var ErrNotInitialized = errors.New("extractor: handle not initialized")

// Kind distinguishes the three forms of top-level symbol this package
// reports.
type Kind int

const (
	Class Kind = iota
	Function
	Variable
)

func (k Kind) String() string {
	switch k {
	case Class:
		return "class"
	case Function:
		return "function"
	case Variable:
		return "variable"
	default:
		return "unknown"
	}
}

// Symbol is one public, module-level definition. Name borrows directly
// from the source buffer the originating parser.Handle was built from;
// it is only valid as long as that buffer is live.
type Symbol struct {
	Kind Kind
	Name []byte
}

func (s Symbol) String() string { return fmt.Sprintf("(%s, %q)", s.Kind, s.Name) }

// Extract walks h's parse tree and returns every public symbol reachable
// from the module's top level, including symbols nested inside
// control-flow guards (if/elif/else/try/except). A root node that is not
// itself a module yields an empty, non-error result.
func Extract(h *parser.Handle) ([]Symbol, error) {
	if !h.Initialized() {
		return nil, ErrNotInitialized
	}
	root := h.Root()
	if root.KindId() != h.Kinds.Module {
		return nil, nil
	}

	var out []Symbol
	enumerate(root, h, &out)
	return out, nil
}

// enumerate visits every named child of parent as a statement in
// sequence. Control-flow containers recurse back into enumerate over
// their own children, which is equivalent to descending into the
// container's first child and continuing across its siblings: together
// they are exactly the container's named children.
func enumerate(parent tree_sitter.Node, h *parser.Handle, out *[]Symbol) {
	n := parent.NamedChildCount()
	for i := uint(0); i < n; i++ {
		child := parent.NamedChild(i)
		if child == nil {
			continue
		}
		visit(*child, h, out)
	}
}

func visit(node tree_sitter.Node, h *parser.Handle, out *[]Symbol) {
	switch node.KindId() {
	case h.Kinds.Block, h.Kinds.IfStatement, h.Kinds.ElseClause,
		h.Kinds.ElifClause, h.Kinds.TryStatement, h.Kinds.ExceptClause:
		enumerate(node, h, out)

	case h.Kinds.DecoratedDefinition:
		// The real definition follows the decorator(s); a single
		// decorator puts it at index 1.
		if def := node.NamedChild(1); def != nil {
			visit(*def, h, out)
		}

	case h.Kinds.ClassDefinition:
		emitDefinition(node, h, Class, out)

	case h.Kinds.FunctionDefinition:
		emitDefinition(node, h, Function, out)

	case h.Kinds.ExpressionStatement:
		emitAssignment(node, h, out)
	}
}

func emitDefinition(def tree_sitter.Node, h *parser.Handle, kind Kind, out *[]Symbol) {
	name := def.NamedChild(0)
	if name == nil || name.KindId() != h.Kinds.Identifier {
		return
	}
	emitIfPublic(*name, h, kind, out)
}

func emitAssignment(stmt tree_sitter.Node, h *parser.Handle, out *[]Symbol) {
	assign := stmt.NamedChild(0)
	if assign == nil || assign.KindId() != h.Kinds.Assignment {
		return
	}
	target := assign.NamedChild(0)
	if target == nil || target.KindId() != h.Kinds.Identifier {
		return
	}
	emitIfPublic(*target, h, Variable, out)
}

func emitIfPublic(ident tree_sitter.Node, h *parser.Handle, kind Kind, out *[]Symbol) {
	name := nodeText(ident, h.Source())
	if isPublic(name) {
		*out = append(*out, Symbol{Kind: kind, Name: name})
	}
}

func nodeText(node tree_sitter.Node, source []byte) []byte {
	start, end := node.StartByte(), node.EndByte()
	if end > uint(len(source)) || start > end {
		return nil
	}
	return source[start:end]
}

func isPublic(name []byte) bool {
	return len(name) > 0 && name[0] != '_'
}
