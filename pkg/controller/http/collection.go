package http

import (
	"net/http"
	"time"

	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/domain/types"
)

type collectionResponse struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Stage        string            `json:"stage"`
	StageStatus  string            `json:"stage_status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Stakeholders map[string]string `json:"stakeholders,omitempty"`
	CurrentPTA   string            `json:"current_pta,omitempty"`
	CurrentPIA   string            `json:"current_pia,omitempty"`
	ArchivedAt   *time.Time        `json:"archived_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toCollectionResponse(c *model.Collection) *collectionResponse {
	return &collectionResponse{
		ID:           c.ID,
		Title:        c.Title,
		Stage:        c.Stage.String(),
		StageStatus:  c.StageStatus.Normalize().String(),
		Metadata:     c.Metadata,
		Stakeholders: c.Stakeholders,
		CurrentPTA:   c.CurrentPTA,
		CurrentPIA:   c.CurrentPIA,
		ArchivedAt:   c.ArchivedAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string            `json:"title"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.uc.Collection.CreateCollection(r.Context(), req.Title, req.Metadata)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusCreated, toCollectionResponse(created))
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	var opts []interfaces.ListCollectionOption
	if raw := r.URL.Query().Get("stage"); raw != "" {
		stage, err := types.ParseStage(raw)
		if err != nil {
			respondError(r.Context(), w, goerrValidation(err))
			return
		}
		opts = append(opts, interfaces.WithStage(stage))
	}

	collections, err := s.uc.Collection.ListCollections(r.Context(), opts...)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	resp := make([]*collectionResponse, len(collections))
	for i, c := range collections {
		resp[i] = toCollectionResponse(c)
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"collections": resp})
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	col, err := s.uc.Collection.GetCollection(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, toCollectionResponse(col))
}

func (s *Server) updateCollection(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	var req struct {
		Metadata     map[string]string `json:"metadata"`
		Stakeholders map[string]string `json:"stakeholders"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	updated, err := s.uc.Collection.UpdateMetadata(r.Context(), id, req.Metadata, req.Stakeholders)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, toCollectionResponse(updated))
}

func (s *Server) collectionTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	entries, err := s.uc.Collection.Timeline(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"timeline": toTimelineResponses(entries)})
}

func (s *Server) processStage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	actor := actorFrom(r)
	if err := s.uc.Collection.ProcessStage(r.Context(), id, actor); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	col, err := s.uc.Collection.GetCollection(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, toCollectionResponse(col))
}

func (s *Server) completeStage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	actor := actorFrom(r)
	next, err := s.uc.Collection.CompleteStage(r.Context(), id, actor)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"next_stage": next.String()})
}

func (s *Server) updateAssessment(w http.ResponseWriter, r *http.Request) {
	assessmentID := idStringParam(r)

	var req struct {
		Status     string   `json:"status"`
		RiskLevel  string   `json:"risk_level"`
		Notes      string   `json:"notes"`
		Conditions []string `json:"conditions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	updated, err := s.uc.Collection.UpdateAssessment(r.Context(), assessmentID,
		types.AssessmentStatus(req.Status), types.RiskLevel(req.RiskLevel), req.Notes, req.Conditions)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, toAssessmentResponse(updated))
}

type assessmentResponse struct {
	ID           string     `json:"id"`
	CollectionID int64      `json:"collection_id"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	RiskLevel    string     `json:"risk_level,omitempty"`
	Reviewer     string     `json:"reviewer,omitempty"`
	ReviewNotes  string     `json:"review_notes,omitempty"`
	Conditions   []string   `json:"conditions,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toAssessmentResponse(a *model.Assessment) *assessmentResponse {
	return &assessmentResponse{
		ID:           a.ID,
		CollectionID: a.CollectionID,
		Kind:         a.Kind.String(),
		Status:       a.Status.String(),
		RiskLevel:    a.RiskLevel.String(),
		Reviewer:     a.Reviewer,
		ReviewNotes:  a.ReviewNotes,
		Conditions:   a.Conditions,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
