// Package ingest validates an uploaded medical report and encodes it for
// transport to the analysis service.
package ingest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// PDFMimeType is the only declared media type accepted for upload.
	PDFMimeType = "application/pdf"

	// MaxSize is the upload limit in bytes (10 MiB).
	MaxSize = 10 << 20
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrRead            = errors.New("failed to read file")
)

// File describes an uploaded file before validation. Open is called at most
// once and only after the declared type and size have been accepted.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// EncodedFile is a validated report, ready to be attached to an analysis
// request. Content is standard base64 without any transport prefix.
type EncodedFile struct {
	Name     string `json:"originalName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"sizeBytes"`
	Content  string `json:"-"`
}

// Decode returns the original bytes of the file.
func (f EncodedFile) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Content)
}

// Validate checks the declared media type and size of f, reads it and
// returns its base64 encoding. Failures wrap ErrUnsupportedType, ErrTooLarge
// or ErrRead.
func Validate(f File) (EncodedFile, error) {
	if f.MimeType != PDFMimeType {
		return EncodedFile{}, fmt.Errorf("%w: %q", ErrUnsupportedType, f.MimeType)
	}
	if f.Size > MaxSize {
		return EncodedFile{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, f.Size)
	}
	if f.Open == nil {
		return EncodedFile{}, fmt.Errorf("%w: no content", ErrRead)
	}

	rc, err := f.Open()
	if err != nil {
		return EncodedFile{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer rc.Close()

	// Read one byte past the limit so an understated Size is still caught.
	data, err := io.ReadAll(io.LimitReader(rc, MaxSize+1))
	if err != nil {
		return EncodedFile{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if len(data) > MaxSize {
		return EncodedFile{}, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, MaxSize)
	}

	return EncodedFile{
		Name:     cleanName(f.Name),
		MimeType: f.MimeType,
		Size:     int64(len(data)),
		Content:  StripTransportPrefix(base64.StdEncoding.EncodeToString(data)),
	}, nil
}

// StripTransportPrefix removes a data URL header such as
// "data:application/pdf;base64," from an encoded payload.
func StripTransportPrefix(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Message returns the text shown to the user for an ingest failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedType):
		return "Please upload a valid PDF file."
	case errors.Is(err, ErrTooLarge):
		return "File size must be less than 10MB."
	case errors.Is(err, ErrRead):
		return "Error reading file. Please try again."
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}

// FromMultipart adapts an HTTP form upload. The declared type is the part's
// Content-Type header.
func FromMultipart(h *multipart.FileHeader) File {
	return File{
		Name:     h.Filename,
		MimeType: declaredType(h.Header.Get("Content-Type")),
		Size:     h.Size,
		Open: func() (io.ReadCloser, error) {
			return h.Open()
		},
	}
}

// FromPath adapts a local file. The declared type is derived from the file
// extension, the way a browser would fill it in.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%w: %s is a directory", ErrRead, path)
	}
	return File{
		Name:     filepath.Base(path),
		MimeType: declaredType(mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromDataURL adapts a JSON upload carrying a data URL
// ("data:application/pdf;base64,...."). The declared type is taken from the
// URL header.
func FromDataURL(name, dataURL string) File {
	mimeType := ""
	if strings.HasPrefix(dataURL, "data:") {
		if i := strings.Index(dataURL, ","); i >= 0 {
			mimeType = declaredType(strings.TrimSuffix(dataURL[len("data:"):i], ";base64"))
		}
	}
	payload := StripTransportPrefix(dataURL)
	return File{
		Name:     name,
		MimeType: mimeType,
		Size:     decodedSize(payload),
		Open: func() (io.ReadCloser, error) {
			data, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// declaredType drops media type parameters, so "application/pdf; name=x"
// compares equal to PDFMimeType while "application/x-pdf" does not. Case is
// kept: "Application/PDF" is not the PDF type.
func declaredType(v string) string {
	mt, _, _ := strings.Cut(v, ";")
	return strings.TrimSpace(mt)
}

func decodedSize(payload string) int64 {
	n := int64(len(payload)) / 4 * 3
	n -= int64(len(payload) - len(strings.TrimRight(payload, "=")))
	if n < 0 {
		return 0
	}
	return n
}

func cleanName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(filepath.Base(name)))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
