package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"learnflow-backend/internal/llm"
	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/models"
	"learnflow-backend/internal/parser"
	"learnflow-backend/internal/pipeline"
	"learnflow-backend/internal/requestctx"
	"learnflow-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return errorRespWithFields(code, message, nil, r)
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	requestID := requestctx.RequestID(r.Context())
	if requestID == "" {
		requestID = r.Header.Get("X-Request-ID")
	}
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: requestID,
		},
	}
}

// handleServiceError maps pipeline, extraction and generation failures onto
// the HTTP error envelope.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	var fields map[string]string
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		fields = map[string]string{"stage": string(stageErr.Stage)}
	}

	var (
		validation *models.ValidationError
		parseErr   *parser.ParseFailure
		timeout    *llm.TimeoutError
		network    *llm.NetworkError
		upstream   *llm.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validation.Fields, r))
	case errors.Is(err, services.ErrUnsupportedFileType):
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "File type not supported", r))
	case errors.Is(err, services.ErrNoContent):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("EXTRACTION_FAILED", "No readable text found in the file", r))
	case errors.Is(err, services.ErrInvalidVideoLink):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("INVALID_VIDEO_LINK", "Not a recognizable YouTube link", r))
	case errors.Is(err, services.ErrTranscriptUnavailable):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("EXTRACTION_FAILED", "Could not obtain a transcript for this video", r))
	case errors.As(err, &parseErr):
		logFailure(log, r, err)
		writeJSON(w, http.StatusBadGateway, errorRespWithFields("PARSE_FAILURE", "The model returned output that could not be understood", fields, r))
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		logFailure(log, r, err)
		writeJSON(w, http.StatusGatewayTimeout, errorRespWithFields("UPSTREAM_TIMEOUT", "The model did not respond in time", fields, r))
	case errors.As(err, &network), errors.As(err, &upstream):
		logFailure(log, r, err)
		writeJSON(w, http.StatusBadGateway, errorRespWithFields("UPSTREAM_ERROR", "The model request failed", fields, r))
	default:
		logFailure(log, r, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

func logFailure(log *logger.Logger, r *http.Request, err error) {
	log.Error("request failed",
		"request_id", requestctx.RequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
}
