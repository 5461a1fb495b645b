package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/catalog"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/passes"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/storage"
)

type PassHandler struct {
	repo   *storage.Repository
	svc    *passes.Service
	logger *slog.Logger
	now    func() time.Time
}

func New(repo *storage.Repository, svc *passes.Service, logger *slog.Logger, now func() time.Time) *PassHandler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &PassHandler{repo: repo, svc: svc, logger: logger, now: now}
}

type purchaseRequest struct {
	Kind      string `json:"kind"`
	PassType  string `json:"pass_type"`
	ValidFrom string `json:"valid_from"`
}

type passResponse struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	PassType   string  `json:"pass_type"`
	Resident   string  `json:"resident"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
	ValidFrom  string  `json:"valid_from"`
	ValidUntil string  `json:"valid_until"`
}

func (h *PassHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}
	resident := strings.TrimSpace(r.Header.Get("X-Resident"))
	if resident == "" {
		resident = catalog.ResidentNonLocal
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Kind = strings.TrimSpace(req.Kind)
	req.PassType = strings.TrimSpace(req.PassType)
	if !catalog.Valid(req.Kind, req.PassType) {
		http.Error(w, "unknown pass kind or type", http.StatusBadRequest)
		return
	}

	validFrom := h.now().Truncate(24 * time.Hour)
	if req.ValidFrom != "" {
		parsed, err := time.Parse("2006-01-02", req.ValidFrom)
		if err != nil {
			http.Error(w, "valid_from must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		validFrom = parsed
	}

	price, err := catalog.Price(req.Kind, req.PassType, resident)
	if err != nil {
		http.Error(w, "no tariff for this pass", http.StatusBadRequest)
		return
	}
	validUntil, err := catalog.ValidUntil(req.PassType, validFrom)
	if err != nil {
		http.Error(w, "unknown pass type", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	overlapping, err := h.repo.HasOverlappingActive(ctx, tx, userID, req.Kind, validFrom, validUntil)
	if err != nil {
		http.Error(w, "failed to check existing passes", http.StatusInternalServerError)
		return
	}
	if overlapping {
		http.Error(w, "an active pass already covers this period", http.StatusConflict)
		return
	}

	pass := storage.Pass{
		ID:         uuid.NewString(),
		UserID:     userID,
		Kind:       req.Kind,
		PassType:   req.PassType,
		Resident:   resident,
		Price:      price,
		Status:     storage.StatusActive,
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
	}
	if err := h.svc.Activate(ctx, tx, pass); err != nil {
		http.Error(w, "failed to create pass", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit transaction", http.StatusInternalServerError)
		return
	}

	h.logger.Info("pass activated", "pass_id", pass.ID, "kind", pass.Kind, "pass_type", pass.PassType)
	writeJSON(w, http.StatusCreated, toResponse(pass))
}

func (h *PassHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}
	includeCancelled := r.URL.Query().Get("include_cancelled") == "true"

	list, err := h.repo.ListByUser(r.Context(), userID, includeCancelled, 50)
	if err != nil {
		http.Error(w, "failed to list passes", http.StatusInternalServerError)
		return
	}
	out := make([]passResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"passes": out})
}

type cancelRequest struct {
	PassID string `json:"pass_id"`
}

func (h *PassHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		http.Error(w, "missing user identity", http.StatusUnauthorized)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.PassID = strings.TrimSpace(req.PassID)
	if req.PassID == "" {
		http.Error(w, "pass_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pass, err := h.repo.GetForUpdate(ctx, tx, userID, req.PassID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "pass not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load pass", http.StatusInternalServerError)
		return
	}
	if pass.Status == storage.StatusCancelled {
		writeJSON(w, http.StatusOK, toResponse(pass))
		return
	}

	if err := h.svc.Cancel(ctx, tx, pass, h.now()); err != nil {
		http.Error(w, "failed to cancel pass", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit transaction", http.StatusInternalServerError)
		return
	}

	pass.Status = storage.StatusCancelled
	h.logger.Info("pass cancelled", "pass_id", pass.ID)
	writeJSON(w, http.StatusOK, toResponse(pass))
}

func toResponse(p storage.Pass) passResponse {
	return passResponse{
		ID:         p.ID,
		Kind:       p.Kind,
		PassType:   p.PassType,
		Resident:   p.Resident,
		Price:      p.Price,
		Status:     p.Status,
		ValidFrom:  p.ValidFrom.Format("2006-01-02"),
		ValidUntil: p.ValidUntil.Format("2006-01-02"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
