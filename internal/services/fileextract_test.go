package services

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnflow-backend/internal/logger"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestExtractText_TXT(t *testing.T) {
	path := writeTemp(t, "upload", []byte("  Line one  \r\n\r\n\r\n\r\nLine two\n"))
	s := NewFileExtractService(nil, logger.Nop())

	got, err := s.ExtractText(context.Background(), path, "Notes.TXT")
	require.NoError(t, err)
	assert.Equal(t, "Line one\n\nLine two", got)
}

func TestExtractText_EmptyTXTIsNoContent(t *testing.T) {
	path := writeTemp(t, "upload", []byte("   \n\n"))
	s := NewFileExtractService(nil, logger.Nop())

	_, err := s.ExtractText(context.Background(), path, "empty.txt")
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestExtractText_DOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Cells &amp; tissues</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t><w:br/><w:t>line</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	s := NewFileExtractService(nil, logger.Nop())
	got, err := s.ExtractText(context.Background(), path, "bio.docx")
	require.NoError(t, err)
	assert.Equal(t, "Cells & tissues\nSecond\nline", got)
}

func TestExtractText_UnsupportedType(t *testing.T) {
	path := writeTemp(t, "upload", []byte("x"))
	s := NewFileExtractService(nil, logger.Nop())

	_, err := s.ExtractText(context.Background(), path, "slides.pptx")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.False(t, IsSupported("slides.pptx"))
	assert.True(t, IsSupported("paper.PDF"))
}

func TestExtractText_ScannedPDFFallsBackToOCR(t *testing.T) {
	path := writeTemp(t, "upload", []byte("%PDF-1.4 not really a pdf"))

	var gotMime string
	var gotBytes int
	ocr := func(_ context.Context, data []byte, mimeType string) (string, error) {
		gotMime = mimeType
		gotBytes = len(data)
		return "Recovered text from the scanned page.", nil
	}
	s := NewFileExtractService(ocr, logger.Nop())

	got, err := s.ExtractText(context.Background(), path, "scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Recovered text from the scanned page.", got)
	assert.Equal(t, "application/pdf", gotMime)
	assert.Equal(t, len("%PDF-1.4 not really a pdf"), gotBytes)
}

func TestExtractText_OCRFailureIsReported(t *testing.T) {
	path := writeTemp(t, "upload", []byte("%PDF-1.4 broken"))
	boom := errors.New("model unavailable")
	s := NewFileExtractService(func(context.Context, []byte, string) (string, error) { return "", boom }, logger.Nop())

	_, err := s.ExtractText(context.Background(), path, "scan.pdf")
	assert.ErrorIs(t, err, boom)
}

func TestExtractText_BrokenPDFWithoutOCR(t *testing.T) {
	path := writeTemp(t, "upload", []byte("not a pdf"))
	s := NewFileExtractService(nil, logger.Nop())

	_, err := s.ExtractText(context.Background(), path, "broken.pdf")
	assert.Error(t, err)
}
