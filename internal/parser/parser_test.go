package parser

import "testing"

func TestParseSimpleModule(t *testing.T) {
	h, err := Parse([]byte("x = 1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer h.Close()

	if !h.Initialized() {
		t.Fatal("handle should be initialized after Parse")
	}
	if h.Root().KindId() != h.Kinds.Module {
		t.Fatalf("root kind = %d, want module kind %d", h.Root().KindId(), h.Kinds.Module)
	}
}

func TestParseEmptySource(t *testing.T) {
	h, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer h.Close()

	if h.Root().KindId() != h.Kinds.Module {
		t.Fatal("empty source should still produce a module root")
	}
}

func TestKindIDsConsistentAcrossHandles(t *testing.T) {
	// Two independent parses must each populate their own cache rather
	// than sharing process-wide mutable state.
	h1, err := Parse([]byte("class A:\n    pass\n"))
	if err != nil {
		t.Fatalf("Parse h1: %v", err)
	}
	defer h1.Close()

	h2, err := Parse([]byte("def f():\n    pass\n"))
	if err != nil {
		t.Fatalf("Parse h2: %v", err)
	}
	defer h2.Close()

	if h1.Kinds.ClassDefinition != h2.Kinds.ClassDefinition {
		t.Fatal("identical grammar should yield identical kind ids across handles")
	}
}

func TestUninitializedHandle(t *testing.T) {
	var h Handle
	if h.Initialized() {
		t.Fatal("zero Handle must report uninitialized")
	}
}
