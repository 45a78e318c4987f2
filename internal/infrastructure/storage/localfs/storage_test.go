package localfs

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundtrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	key := "doc-1_contract.pdf"
	if err := s.Save(context.Background(), key, strings.NewReader("payload-bytes")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := s.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if string(raw) != "payload-bytes" {
		t.Fatalf("expected payload roundtrip, got %q", string(raw))
	}
}

func TestSaveStripsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Save(context.Background(), "../escape.bin", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := s.Open(context.Background(), "escape.bin"); err != nil {
		t.Fatalf("expected file inside base dir, open error = %v", err)
	}
}

func TestOpenMissingKeyFails(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.Open(context.Background(), "missing.pdf"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
