// Package doc reads contract documents from disk: plain text (UTF-8
// with a latin-1 fallback) and PDF (page-by-page text extraction).
package doc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	pdfx "github.com/ledongthuc/pdf"
)

// Document is the extracted text of an input file.
type Document struct {
	Path  string
	Text  string
	IsPDF bool
}

// Read loads a contract document. ".pdf" files go through page-by-page
// text extraction; everything else is read as text.
func Read(path string) (*Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := ReadPDF(path)
		if err != nil {
			return nil, err
		}
		return &Document{Path: path, Text: text, IsPDF: true}, nil
	}

	text, err := ReadTextFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Text: text}, nil
}

// ReadTextFile reads a file as UTF-8. Files that are not valid UTF-8
// are decoded as latin-1 so legacy exports still load.
func ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	return decodeLatin1(data), nil
}

// decodeLatin1 maps each byte to the equivalent code point.
func decodeLatin1(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

// ReadPDF extracts text from every page of a PDF. A page whose
// extraction fails contributes an empty string rather than an error;
// pages are joined with blank-line separators.
func ReadPDF(path string) (string, error) {
	f, r, err := pdfx.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		pages = append(pages, pageText(r, i))
	}

	return strings.Join(pages, "\n\n"), nil
}

// pageText extracts one page, absorbing both errors and panics from the
// underlying parser (malformed pages yield "").
func pageText(r *pdfx.Reader, n int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	page := r.Page(n)
	if page.V.IsNull() {
		return ""
	}
	txt, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return txt
}

// Truncate caps text at n bytes before prompt embedding, trimming back
// to a rune boundary so the cut never produces invalid UTF-8. A cost
// and latency control, not a correctness requirement.
func Truncate(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}
