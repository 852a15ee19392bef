package emailfilter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDisposable_Builtin(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !f.Disposable("user@mailinator.com") {
		t.Fatal("expected mailinator.com to be disposable")
	}
	if !f.Disposable("user@MAILINATOR.COM") {
		t.Fatal("expected case-insensitive match")
	}
	if f.Disposable("user@example.com") {
		t.Fatal("example.com should pass")
	}
}

func TestDisposable_Subdomain(t *testing.T) {
	f, _ := Load("")
	if !f.Disposable("user@mx.yopmail.com") {
		t.Fatal("expected subdomain of denylisted domain to match")
	}
}

func TestDisposable_Malformed(t *testing.T) {
	f, _ := Load("")
	if f.Disposable("not-an-email") || f.Disposable("trailing@") {
		t.Fatal("malformed addresses are not the filter's concern")
	}
}

func TestLoad_ExtraFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.txt")
	if err := os.WriteFile(path, []byte("# comment\nburner.dev\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !f.Disposable("a@burner.dev") {
		t.Fatal("expected file-provided domain to match")
	}
}
