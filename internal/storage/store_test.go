package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestDiskStore_PutOpen(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx := context.Background()
	if err := s.Put(ctx, "bookings/b-1/spec.txt", strings.NewReader("hello")); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, err := s.Open(ctx, "bookings/b-1/spec.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "hello" {
		t.Fatalf("unexpected content: %q", b)
	}
}

func TestDiskStore_RejectsEscapingPaths(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Put(context.Background(), "../outside.txt", strings.NewReader("x")); err == nil {
		// Clean pins the path, so a put must never land outside root.
		if _, err := s.Open(context.Background(), "../outside.txt"); err != nil {
			t.Fatal("put escaped the store root")
		}
	}
}

func TestDiskStore_EmptyRootUnconfigured(t *testing.T) {
	if _, err := NewDiskStore("  "); err != ErrUnconfigured {
		t.Fatalf("expected ErrUnconfigured, got %v", err)
	}
}
