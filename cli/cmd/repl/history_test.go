package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Memory(t *testing.T) {
	h := NewHistory("")

	for _, line := range []string{"1", "  ", "2", "2", "1"} {
		if _, err := h.WriteWithMode(line, modeEval); err != nil {
			t.Fatalf("write %q: %v", line, err)
		}
	}

	want := []HistoryEntry{{"2", modeEval}, {"1", modeEval}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries %v, want %v", got, want)
	}

	if _, err := h.GetEntry(2); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}

	if err := h.Load(); err != nil || h.Len() != 2 {
		t.Errorf("load of memory history changed entries: %v", err)
	}
}

func TestHistory_ModesAreDistinct(t *testing.T) {
	h := NewHistory("")

	h.WriteWithMode("vars", modeEval)
	h.WriteWithMode("vars", modeCtrl)

	if h.Len() != 2 {
		t.Errorf("expected both entries, got %v", h.Entries())
	}
}

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load missing file: %v", err)
	}

	h.WriteWithMode("v.x = 1", modeEval)
	h.WriteWithMode("vars", modeCtrl)
	h.WriteWithMode("v.x", modeEval)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:v.x = 1\nC:vars\nE:v.x\n"; string(data) != want {
		t.Errorf("file %q, want %q", data, want)
	}

	// Moving a duplicate to the end rewrites the file.
	h.WriteWithMode("v.x = 1", modeEval)

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{"vars", modeCtrl},
		{"v.x", modeEval},
		{"v.x = 1", modeEval},
	}
	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries %v, want %v", got, want)
	}
}

func TestDecodeEntry_Unprefixed(t *testing.T) {
	if got := decodeEntry("1 + 1"); got != (HistoryEntry{"1 + 1", modeEval}) {
		t.Errorf("unexpected entry %v", got)
	}
}
