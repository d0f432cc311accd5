package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// writeReport renders a small one-page lab report.
func writeReport(t *testing.T, path string) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Complete Blood Count")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	for _, row := range [][2]string{
		{"Haemoglobin", "11.2 g/dL (13.0 - 17.0)"},
		{"WBC", "7.4 x10^9/L (4.0 - 11.0)"},
		{"Platelets", "250 x10^9/L (150 - 400)"},
	} {
		pdf.CellFormat(60, 8, row[0], "1", 0, "", false, 0, "")
		pdf.CellFormat(80, 8, row[1], "1", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("failed to render pdf: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write pdf: %v", err)
	}
	return buf.Bytes()
}

func TestFromPath_GeneratedReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CBC Report.PDF")
	want := writeReport(t, path)

	src, err := FromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.MimeType != PDFMimeType {
		t.Fatalf("expected %q, got %q", PDFMimeType, src.MimeType)
	}

	enc, err := Validate(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc.Name != "CBC Report.PDF" {
		t.Errorf("expected name 'CBC Report.PDF', got %q", enc.Name)
	}

	got, err := enc.Decode()
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("decoded content differs from the generated report")
	}
	if !bytes.HasPrefix(got, []byte("%PDF-")) {
		t.Error("expected a PDF header")
	}
}
