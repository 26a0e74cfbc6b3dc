package notifications

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/onco-erp/onco/internal/platform/httpx"
	"github.com/onco-erp/onco/internal/shared"
)

const maxListLimit = 100

// Lister reads notifications addressed to a user.
type Lister interface {
	ListForUser(ctx context.Context, user string, limit int) ([]Log, error)
}

// Handler exposes the notification inbox of the acting user.
type Handler struct {
	logger *slog.Logger
	repo   Lister
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, repo Lister) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

type logView struct {
	ID           string `json:"id"`
	Subject      string `json:"subject"`
	EmailContent string `json:"email_content"`
	Type         string `json:"type"`
	DocumentType string `json:"document_type"`
	DocumentName string `json:"document_name"`
	Read         bool   `json:"read"`
	CreatedAt    string `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user := shared.ActorFromContext(r.Context())
	if user == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxListLimit {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}
	logs, err := h.repo.ListForUser(r.Context(), user, limit)
	if err != nil {
		h.logger.Error("list notifications", slog.String("user", user), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]logView, 0, len(logs))
	for _, l := range logs {
		views = append(views, logView{
			ID:           l.ID.String(),
			Subject:      l.Subject,
			EmailContent: l.EmailContent,
			Type:         string(l.Type),
			DocumentType: l.DocumentType,
			DocumentName: l.DocumentName,
			Read:         l.Read,
			CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	httpx.JSON(w, http.StatusOK, views)
}
