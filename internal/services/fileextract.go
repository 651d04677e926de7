package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"learnflow-backend/internal/logger"
)

// minPDFTextChars is the embedded-text length below which a PDF is treated as scanned.
const minPDFTextChars = 100

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNoContent           = errors.New("no meaningful content extracted")
)

// SupportedExtensions lists the upload types the extractor understands.
var SupportedExtensions = []string{".pdf", ".docx", ".txt"}

type FileExtractService struct {
	ocr TranscribeFunc
	log *logger.Logger
}

// NewFileExtractService builds the extractor. ocr may be nil, in which case
// scanned PDFs yield whatever embedded text they carry.
func NewFileExtractService(ocr TranscribeFunc, log *logger.Logger) *FileExtractService {
	return &FileExtractService{ocr: ocr, log: log}
}

// IsSupported reports whether filename has an extension ExtractText accepts.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ExtractText reads the file at path, dispatching on the extension of the
// original upload name.
func (s *FileExtractService) ExtractText(ctx context.Context, path, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var (
		text string
		err  error
	)
	switch ext {
	case ".txt":
		text, err = s.extractTXT(path)
	case ".pdf":
		text, err = s.extractPDFWithFallback(ctx, path)
	case ".docx":
		text, err = s.extractDOCX(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}
	return text, nil
}

func (s *FileExtractService) extractTXT(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return normalizeExtractedText(string(b)), nil
}

func (s *FileExtractService) extractPDFWithFallback(ctx context.Context, path string) (string, error) {
	text, err := s.extractPDF(path)
	if err != nil {
		s.log.Warn("pdf text layer unreadable", "error", err)
	}
	if len(strings.TrimSpace(text)) >= minPDFTextChars || s.ocr == nil {
		if err != nil && text == "" {
			return "", err
		}
		return text, nil
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", readErr
	}
	s.log.Info("pdf has little embedded text, running OCR", "chars", len(strings.TrimSpace(text)))
	ocrText, ocrErr := s.ocr(ctx, data, "application/pdf")
	if ocrErr != nil {
		return "", fmt.Errorf("ocr fallback failed: %w", ocrErr)
	}
	return normalizeExtractedText(ocrText), nil
}

func (s *FileExtractService) extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return normalizeExtractedText(b.String()), nil
}

func (s *FileExtractService) extractDOCX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var documentXML []byte
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		documentXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		break
	}

	if len(documentXML) == 0 {
		return "", fmt.Errorf("docx document.xml not found")
	}
	return normalizeExtractedText(stripDOCXML(documentXML)), nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

var xmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

func stripDOCXML(src []byte) string {
	s := string(src)

	// paragraphs and breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	s = xmlTagPattern.ReplaceAllString(s, "")
	return xmlEntities.Replace(s)
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var buf bytes.Buffer
	emptyCount := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
