package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valpere/meditranslate/internal/catalog"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env"), "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%%EOF\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestLanguagesCommand_JSON(t *testing.T) {
	out, err := run(t, "languages", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var langs []catalog.Language
	if err := json.Unmarshal([]byte(out), &langs); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, out)
	}
	if len(langs) != len(catalog.List()) {
		t.Errorf("expected %d languages, got %d", len(catalog.List()), len(langs))
	}
}

func TestLanguagesCommand_Table(t *testing.T) {
	out, err := run(t, "languages", "--json=false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Hindi") || !strings.Contains(out, "CODE") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

func TestAnalyzeCommand_Stub(t *testing.T) {
	input := writePDF(t, "report.pdf")
	output := filepath.Join(t.TempDir(), "out", "report.hi.md")

	if _, err := run(t, "analyze", "--stub", "-i", input, "-l", "hi", "-o", output, "-f", "md"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	md := string(data)
	if !strings.Contains(md, "# report.pdf") || !strings.Contains(md, "Hindi") {
		t.Errorf("unexpected report:\n%s", md)
	}
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	pdf := writePDF(t, "report.pdf")
	txt := writePDF(t, "notes.txt")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown language", []string{"-i", pdf, "-l", "fr"}, "unsupported language"},
		{"unknown format", []string{"-i", pdf, "-l", "hi", "-f", "docx"}, "unknown output format"},
		{"not a pdf", []string{"-i", txt, "-l", "hi"}, "Please upload a valid PDF file."},
		{"missing file", []string{"-i", filepath.Join(t.TempDir(), "absent.pdf"), "-l", "hi"}, "Error reading file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"analyze", "--stub", "-o", "", "-f", "md"}, tt.args...)
			_, err := run(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
