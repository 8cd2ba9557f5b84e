package fonts

import (
	"bytes"
	"testing"
)

func TestLoadAcceptsEmbedPrefix(t *testing.T) {
	a, err := Load("embed:liberation/sans-bold")
	if err != nil {
		t.Fatalf("load with prefix: %v", err)
	}
	b, err := Load("liberation/sans-bold")
	if err != nil {
		t.Fatalf("load without prefix: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("prefixed and bare names must resolve to the same font")
	}
	if len(a) == 0 {
		t.Fatalf("font data is empty")
	}
}

func TestLoadUnknown(t *testing.T) {
	if _, err := Load("embed:comic/sans"); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}

func TestFallbackIsRegistered(t *testing.T) {
	if _, err := Load(Fallback); err != nil {
		t.Fatalf("fallback font must be loadable: %v", err)
	}
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
