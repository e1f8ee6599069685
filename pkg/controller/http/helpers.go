package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/privsec-lab/custodian/pkg/domain/model"
	"github.com/privsec-lab/custodian/pkg/usecase"
	"github.com/privsec-lab/custodian/pkg/utils/errutil"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(model.ErrValidation, "invalid request body", goerr.V("cause", err.Error()))
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(model.ErrValidation, "invalid ID", goerr.V("id", raw))
	}
	return id, nil
}

func idStringParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// actorFrom resolves the acting user from the request. Authentication is
// out of scope for the API; callers identify themselves via header.
func actorFrom(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

func goerrValidation(err error) error {
	return goerr.Wrap(model.ErrValidation, err.Error())
}

type timelineResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Actor     string            `json:"actor,omitempty"`
	Payload   map[string]string `json:"payload,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func toTimelineResponses(entries []*model.TimelineEntry) []*timelineResponse {
	resp := make([]*timelineResponse, len(entries))
	for i, e := range entries {
		resp[i] = &timelineResponse{
			ID:        e.ID,
			Type:      e.Type.String(),
			Actor:     e.Actor,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		}
	}
	return resp
}

// respondError maps domain sentinels onto HTTP status codes and writes
// the error response
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, usecase.ErrCollectionNotFound),
		errors.Is(err, usecase.ErrBreachNotFound),
		errors.Is(err, usecase.ErrNotificationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrPrecondition),
		errors.Is(err, usecase.ErrCollectionArchived):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrTransport):
		status = http.StatusBadGateway
	}
	errutil.HandleHTTP(ctx, w, err, status)
}
