package balance

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetBalance(userID int64, year int) (*Balance, error)
	GetBalances(userIDs []int64, year int) (map[int64]*Balance, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// GetMyBalance returns the acting user's balance for ?year= (default: now).
func (h *Handler) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	year := yearParam(r)
	b, err := h.Service.GetBalance(user.ID, year)
	if err != nil {
		h.Logger.Error("GetMyBalance: service error", "error", err, "user_id", user.ID, "year", year)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

// GetUserBalance is the admin view of another user's balance.
func (h *Handler) GetUserBalance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if !user.IsAdmin() && user.ID != userID {
		h.WriteError(w, http.StatusForbidden, "admin access required")
		return
	}

	year := yearParam(r)
	b, err := h.Service.GetBalance(userID, year)
	if err != nil {
		h.Logger.Error("GetUserBalance: service error", "error", err, "user_id", userID, "year", year)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

// GetBalances resolves balances for ?user_ids=1,2,3 in one batch for the
// admin dashboard.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !user.IsAdmin() {
		h.WriteError(w, http.StatusForbidden, "admin access required")
		return
	}

	ids, err := parseUserIDs(r.URL.Query().Get("user_ids"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user_ids parameter")
		return
	}
	if len(ids) == 0 {
		h.WriteError(w, http.StatusBadRequest, "user_ids parameter is required")
		return
	}

	year := yearParam(r)
	balances, err := h.Service.GetBalances(ids, year)
	if err != nil {
		h.Logger.Error("GetBalances: service error", "error", err, "year", year, "count", len(ids))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"year":     year,
		"balances": balances,
	})
}

func yearParam(r *http.Request) int {
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil && y >= 2000 && y <= 2200 {
			return y
		}
	}
	return time.Now().Year()
}

func parseUserIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
