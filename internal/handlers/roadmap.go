package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"learnflow-backend/internal/logger"
	"learnflow-backend/internal/models"
)

// RoadmapBuilder is satisfied by *pipeline.RoadmapPipeline.
type RoadmapBuilder interface {
	GenerateRoadmap(ctx context.Context, req models.RoadmapRequest) (*models.Roadmap, error)
	CreateLearningPath(ctx context.Context, req models.ExpandRequest) (*models.LearningPath, error)
}

type RoadmapHandler struct {
	pipeline RoadmapBuilder
	log      *logger.Logger
}

func NewRoadmapHandler(p RoadmapBuilder, log *logger.Logger) *RoadmapHandler {
	return &RoadmapHandler{pipeline: p, log: log}
}

// Generate handles POST /generate-roadmap.
func (h *RoadmapHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.RoadmapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	roadmap, err := h.pipeline.GenerateRoadmap(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, roadmap)
}

// Expand handles POST /expand-roadmap.
func (h *RoadmapHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req models.ExpandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	path, err := h.pipeline.CreateLearningPath(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}
