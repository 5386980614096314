package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestParseReader_Cache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()
	src := "let x = 1\nx + 1"

	first, err := ParseReader(ctx, strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	second, err := ParseReader(ctx, strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if first != second {
		t.Error("expected the cached block to be reused")
	}

	other, err := ParseReader(ctx, strings.NewReader(src), WithMaxDepth(3))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if other == first {
		t.Error("expected different options to bypass the cached entry")
	}

	ClearCache()

	third, err := ParseReader(ctx, strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if third == first {
		t.Error("expected a fresh block after ClearCache")
	}

	got, err := New().EvalBlock(ctx, third, nil)
	if err != nil || got != UInt64(2) {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestParseReader_Errors(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()

	for range 2 {
		if _, err := ParseReader(ctx, strings.NewReader("1 +")); !errors.Is(err, ErrParse) {
			t.Errorf("expected ErrParse, got %v", err)
		}
	}

	_, err := ParseReader(ctx, iotest.ErrReader(errors.New("disk on fire")))
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}
