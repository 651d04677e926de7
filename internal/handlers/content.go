package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/models"
	"learnflow-backend/internal/requestctx"
	"learnflow-backend/internal/services"
)

// ContentProcessor runs the simplify-and-quiz flow. *pipeline.ContentPipeline satisfies it.
type ContentProcessor interface {
	SimplifyAndQuiz(ctx context.Context, content string) (*models.SimplifiedQuizResult, error)
}

// TextExtractor reads text out of an uploaded document. *services.FileExtractService satisfies it.
type TextExtractor interface {
	ExtractText(ctx context.Context, path, filename string) (string, error)
}

// VideoTextSource resolves a video link to transcript text. *services.YouTubeService satisfies it.
type VideoTextSource interface {
	VideoText(ctx context.Context, link string, transcribe services.TranscribeFunc) (string, error)
}

type ContentHandler struct {
	pipeline       ContentProcessor
	extractor      TextExtractor
	videos         VideoTextSource
	transcribe     services.TranscribeFunc
	maxUploadBytes int64
	log            *logger.Logger
}

// NewContentHandler builds the handler for the three process endpoints.
// transcribe may be nil, in which case videos without captions are rejected.
func NewContentHandler(p ContentProcessor, extractor TextExtractor, videos VideoTextSource, transcribe services.TranscribeFunc, maxUploadMB int, log *logger.Logger) *ContentHandler {
	return &ContentHandler{
		pipeline:       p,
		extractor:      extractor,
		videos:         videos,
		transcribe:     transcribe,
		maxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
		log:            log,
	}
}

// ProcessText handles POST /process_text/ with form field "text".
func (h *ContentHandler) ProcessText(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", map[string]string{"text": "is required"}, r))
		return
	}
	h.simplify(w, r, models.SourceText, text)
}

// ProcessFile handles POST /process_file/ with a multipart "file" upload.
func (h *ContentHandler) ProcessFile(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		if r.ContentLength > h.maxUploadBytes {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", fmt.Sprintf("File size exceeds %dMB limit", h.maxUploadBytes/(1024*1024)), r))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", fmt.Sprintf("File size exceeds %dMB limit", h.maxUploadBytes/(1024*1024)), r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "No file provided", map[string]string{"file": "is required"}, r))
		return
	}
	defer file.Close()

	if !services.IsSupported(header.Filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "File type not supported", r))
		return
	}

	tmp, err := os.CreateTemp("", "learnflow-upload-*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		handleServiceError(w, r, h.log, fmt.Errorf("failed to create temp file: %w", err))
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	closeErr := tmp.Close()
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "Upload could not be read", r))
		return
	}
	if closeErr != nil {
		handleServiceError(w, r, h.log, fmt.Errorf("failed to write temp file: %w", closeErr))
		return
	}

	text, err := h.extractor.ExtractText(r.Context(), tmp.Name(), header.Filename)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	h.simplify(w, r, models.SourceDocument, text)
}

// ProcessVideo handles POST /process_video/ with form field "video_link".
func (h *ContentHandler) ProcessVideo(w http.ResponseWriter, r *http.Request) {
	link := strings.TrimSpace(r.FormValue("video_link"))
	if link == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", map[string]string{"video_link": "is required"}, r))
		return
	}

	text, err := h.videos.VideoText(r.Context(), link, h.transcribe)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	h.simplify(w, r, models.SourceVideo, text)
}

func (h *ContentHandler) simplify(w http.ResponseWriter, r *http.Request, source models.SourceType, text string) {
	h.log.Info("simplifying content",
		"request_id", requestctx.RequestID(r.Context()),
		"source", source,
		"chars", len(text),
	)

	result, err := h.pipeline.SimplifyAndQuiz(r.Context(), text)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SupportedFormats lists the document types /process_file/ accepts.
func (h *ContentHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"formats": []map[string]string{
			{"extension": ".pdf", "mime_type": "application/pdf", "description": "PDF Document"},
			{"extension": ".docx", "mime_type": "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "description": "Word Document"},
			{"extension": ".txt", "mime_type": "text/plain", "description": "Plain Text"},
		},
		"max_upload_mb": h.maxUploadBytes / (1024 * 1024),
	})
}
