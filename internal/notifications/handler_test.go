package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/onco-erp/onco/internal/shared"
)

type memoryLister struct {
	logs      map[string][]Log
	err       error
	lastLimit int
}

func (m *memoryLister) ListForUser(_ context.Context, user string, limit int) ([]Log, error) {
	m.lastLimit = limit
	return m.logs[user], m.err
}

func serve(t *testing.T, repo Lister, actor, query string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api/notifications", NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), repo).MountRoutes)
	req := httptest.NewRequest(http.MethodGet, "/api/notifications/"+query, nil)
	if actor != "" {
		req = req.WithContext(shared.ContextWithActor(req.Context(), actor))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListReturnsActorInbox(t *testing.T) {
	id := uuid.New()
	repo := &memoryLister{logs: map[string][]Log{
		"admin@onco.test": {{ID: id, Subject: "Pharmaceutical Item Expiry Alert: Amoxicillin", ForUser: "admin@onco.test", Type: TypeAlert, DocumentType: "Item", DocumentName: "AMOX-500", CreatedAt: time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)}},
	}}
	rec := serve(t, repo, "admin@onco.test", "?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, repo.lastLimit)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	require.Equal(t, id.String(), body[0]["id"])
	require.Equal(t, "AMOX-500", body[0]["document_name"])
	require.Equal(t, "2026-10-16T06:00:00Z", body[0]["created_at"])
}

func TestListRequiresActor(t *testing.T) {
	rec := serve(t, &memoryLister{}, "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListRejectsBadLimit(t *testing.T) {
	rec := serve(t, &memoryLister{}, "admin@onco.test", "?limit=1000")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRepositoryFailure(t *testing.T) {
	rec := serve(t, &memoryLister{err: errors.New("db down")}, "admin@onco.test", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
