// Package parser wraps the external tree-sitter parser: it produces a
// parse handle over a source buffer, caching the small set of node-kind
// identifiers the symbol extractor needs, scoped per handle so concurrent
// parses never share mutable process-wide state.
package parser

import (
	"errors"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// ErrTreeNotFound is returned when the underlying parser declines to
// produce a tree (for example, on cancellation). It is the sole error
// Parse can return.
var ErrTreeNotFound = errors.New("parser: tree-sitter produced no tree")

// kindNames is the fixed set of node kinds the extractor inspects.
var kindNames = [...]string{
	"module", "class_definition", "function_definition",
	"expression_statement", "assignment", "identifier",
	"decorated_definition", "block", "try_statement",
	"except_clause", "if_statement", "else_clause", "elif_clause",
}

// KindIDs is a per-handle cache of tree-sitter node-kind identifiers. The
// reference layout keeps these in a process-wide mutable slot; that is a
// latent hazard under concurrent parsing, so here they live on the
// Handle that owns the parse that produced them.
type KindIDs struct {
	Module              uint16
	ClassDefinition     uint16
	FunctionDefinition  uint16
	ExpressionStatement uint16
	Assignment          uint16
	Identifier          uint16
	DecoratedDefinition uint16
	Block               uint16
	TryStatement        uint16
	ExceptClause        uint16
	IfStatement         uint16
	ElseClause          uint16
	ElifClause          uint16
}

func newKindIDs(lang *tree_sitter.Language) KindIDs {
	id := func(name string) uint16 { return lang.IdForNodeKind(name, true) }
	return KindIDs{
		Module:              id(kindNames[0]),
		ClassDefinition:     id(kindNames[1]),
		FunctionDefinition:  id(kindNames[2]),
		ExpressionStatement: id(kindNames[3]),
		Assignment:          id(kindNames[4]),
		Identifier:          id(kindNames[5]),
		DecoratedDefinition: id(kindNames[6]),
		Block:               id(kindNames[7]),
		TryStatement:        id(kindNames[8]),
		ExceptClause:        id(kindNames[9]),
		IfStatement:         id(kindNames[10]),
		ElseClause:          id(kindNames[11]),
		ElifClause:          id(kindNames[12]),
	}
}

// Handle owns a parser, its language, and the resulting tree for a single
// parse of source. source must outlive the Handle: node text slices
// extracted from it borrow directly from this buffer.
type Handle struct {
	language    *tree_sitter.Language
	parser      *tree_sitter.Parser
	tree        *tree_sitter.Tree
	source      []byte
	Kinds       KindIDs
	initialized bool
}

// Parse acquires a Python language handle and a parser, runs the parser
// over source, and returns a Handle owning all three plus the source
// borrow. The only error it returns is ErrTreeNotFound.
func Parse(source []byte) (*Handle, error) {
	language := tree_sitter.NewLanguage(tree_sitter_python.Language())
	p := tree_sitter.NewParser()
	if err := p.SetLanguage(language); err != nil {
		p.Close()
		return nil, ErrTreeNotFound
	}

	tree := p.Parse(source, nil)
	if tree == nil {
		p.Close()
		return nil, ErrTreeNotFound
	}

	return &Handle{
		language:    language,
		parser:      p,
		tree:        tree,
		source:      source,
		Kinds:       newKindIDs(language),
		initialized: true,
	}, nil
}

// Root returns the tree's root node.
func (h *Handle) Root() tree_sitter.Node { return h.tree.RootNode() }

// Source returns the borrowed source buffer backing this handle's node
// text slices. Callers must not retain Source() past the Handle's life.
func (h *Handle) Source() []byte { return h.source }

// Initialized reports whether the kind-id cache has been populated. A
// Handle returned by Parse is always initialized; the zero Handle is not.
func (h *Handle) Initialized() bool { return h != nil && h.initialized }

// Close releases tree, then parser, then language: the reverse of
// acquisition order.
func (h *Handle) Close() {
	if h == nil {
		return
	}
	if h.tree != nil {
		h.tree.Close()
		h.tree = nil
	}
	if h.parser != nil {
		h.parser.Close()
		h.parser = nil
	}
	h.language = nil
}
