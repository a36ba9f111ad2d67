package doc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRead_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte("Liability is capped."), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	document, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if document.Text != "Liability is capped." {
		t.Errorf("unexpected text: %q", document.Text)
	}
	if document.IsPDF {
		t.Error("expected IsPDF false for .txt")
	}
	if document.Path != path {
		t.Errorf("expected path recorded, got %q", document.Path)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read("/nonexistent/contract.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadTextFile_Latin1Fallback(t *testing.T) {
	// 0xE9 is 'é' in latin-1 and invalid as a standalone UTF-8 byte
	path := filepath.Join(t.TempDir(), "legacy.txt")
	if err := os.WriteFile(path, []byte{'c', 'a', 'f', 0xE9}, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	text, err := ReadTextFile(path)
	if err != nil {
		t.Fatalf("ReadTextFile failed: %v", err)
	}
	if text != "café" {
		t.Errorf("expected latin-1 decode, got %q", text)
	}
}

func TestReadTextFile_UTF8Unchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utf8.txt")
	content := "Résumé § clause — ok"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	text, err := ReadTextFile(path)
	if err != nil {
		t.Fatalf("ReadTextFile failed: %v", err)
	}
	if text != content {
		t.Errorf("expected UTF-8 passthrough, got %q", text)
	}
}

func TestRead_BrokenPDF(t *testing.T) {
	// Not a real PDF; open must fail cleanly rather than panic
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := Read(path); err == nil {
		t.Error("expected error for malformed PDF")
	}
}

func TestRead_PDFExtensionCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upper.PDF")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	// Routed through the PDF reader (which rejects the bogus content)
	// rather than silently read as text.
	if _, err := Read(path); err == nil || !strings.Contains(err.Error(), "pdf") {
		t.Errorf("expected pdf open error, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("expected short text unchanged, got %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello" {
		t.Errorf("expected truncation, got %q", got)
	}
	if got := Truncate("hello", 0); got != "hello" {
		t.Errorf("expected zero cap to disable truncation, got %q", got)
	}
	if got := Truncate("hello", -1); got != "hello" {
		t.Errorf("expected negative cap to disable truncation, got %q", got)
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	// "é" is two bytes; a cap landing mid-rune trims back to the boundary
	if got := Truncate("héllo", 2); got != "h" {
		t.Errorf("expected cut at rune boundary, got %q", got)
	}
	if got := Truncate("héllo", 3); got != "hé" {
		t.Errorf("expected full rune kept, got %q", got)
	}
	if !utf8.ValidString(Truncate(strings.Repeat("§", 100), 33)) {
		t.Error("expected truncated text to stay valid UTF-8")
	}
}
