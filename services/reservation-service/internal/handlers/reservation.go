package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/availability"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/model"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/outbox"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/pricing"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/storage"
)

type ReservationHandler struct {
	repo       *storage.ReservationRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	seasons    availability.SeasonTable
	now        func() time.Time
}

func NewReservationHandler(repo *storage.ReservationRepository, outboxRepo *outbox.Repository, logger *slog.Logger, seasons availability.SeasonTable, now func() time.Time) *ReservationHandler {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &ReservationHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		logger:     logger,
		seasons:    seasons,
		now:        now,
	}
}

type createReservationRequest struct {
	Facility  string `json:"facility"`
	Kind      string `json:"kind"`
	Date      string `json:"date"` // "2006-01-02"
	StartHour string `json:"start_hour"`
	EndHour   string `json:"end_hour"`
	Hours     int    `json:"hours"`
	Lighting  bool   `json:"lighting"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	DNI       string `json:"dni"`
}

type createReservationResponse struct {
	ReservationID string  `json:"reservation_id"`
	Price         float64 `json:"price"`
}

type cancelReservationRequest struct {
	ReservationID string `json:"reservation_id"`
}

type cancelReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type slotItem struct {
	Hour      string `json:"hour"`
	Available bool   `json:"available"`
	Past      bool   `json:"past"`
	Reserved  bool   `json:"reserved"`
	Facility  string `json:"facility,omitempty"`
}

type listReservationItem struct {
	ReservationID string  `json:"reservation_id"`
	Facility      string  `json:"facility"`
	Kind          string  `json:"kind"`
	Date          string  `json:"date"`
	StartHour     string  `json:"start_hour"`
	EndHour       string  `json:"end_hour,omitempty"`
	Hours         int     `json:"hours"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// Slots renders the availability grid for one day: every bookable hour with
// its past/reserved/available status, straight from the engine.
func (h *ReservationHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	facility := strings.TrimSpace(r.URL.Query().Get("facility"))
	if dateStr == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	bookings, err := h.repo.ListDayBookings(r.Context(), date)
	if err != nil {
		http.Error(w, "failed to load reservations", http.StatusInternalServerError)
		return
	}

	slots := h.seasons.SlotStatuses(date, bookings, h.now(), facility)
	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			Hour:      s.Hour,
			Available: s.Available,
			Past:      s.Past,
			Reserved:  s.Reserved,
			Facility:  s.Facility,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	residentClaim := strings.TrimSpace(r.Header.Get("X-Resident"))

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Facility = strings.TrimSpace(req.Facility)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Facility == "" || req.Date == "" || req.StartHour == "" || req.Name == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}

	kind := model.Kind(req.Kind)
	switch kind {
	case model.KindSports, model.KindGym, model.KindPool:
	default:
		http.Error(w, "invalid kind", http.StatusBadRequest)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	if req.Hours <= 0 && req.EndHour == "" {
		http.Error(w, "hours or end_hour required", http.StatusBadRequest)
		return
	}

	startHour, endHour, hours, ok := h.normalizeInterval(date, req.StartHour, req.EndHour, req.Hours)
	if !ok {
		http.Error(w, "requested hours are outside opening hours", http.StatusBadRequest)
		return
	}

	now := h.now()
	if availability.IsPast(date, startHour, now) {
		http.Error(w, "requested time is in the past", http.StatusUnprocessableEntity)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, userID, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.ResponsePayload)
			return
		}
	}

	// Sports slots go through the overlap check; gym and pool admissions are
	// not slot-exclusive and skip it. The exclusion constraint on the insert
	// still closes the remaining check-then-write race for sports rows.
	if kind == model.KindSports {
		bookings, err := h.repo.ListDayBookings(ctx, date)
		if err != nil {
			http.Error(w, "failed to load reservations", http.StatusInternalServerError)
			return
		}
		if !availability.FacilityAvailable(date, startHour, endHour, bookings, req.Facility) {
			if idempotencyKey != "" {
				if h.finalizeIdempotencyError(ctx, tx, userID, idempotencyKey, http.StatusConflict, "slot already reserved") {
					_ = tx.Commit(ctx)
				}
			}
			http.Error(w, "slot already reserved", http.StatusConflict)
			return
		}
	}

	price, err := h.price(ctx, tx, userID, kind, req.Facility, residentClaim, req.Lighting, hours, date)
	if err != nil {
		http.Error(w, "unknown facility", http.StatusBadRequest)
		return
	}

	res := &model.Reservation{
		UserID:    userID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     strings.TrimSpace(req.Phone),
		DNI:       strings.TrimSpace(req.DNI),
		Facility:  req.Facility,
		Kind:      kind,
		Date:      date,
		StartHour: startHour,
		EndHour:   endHour,
		Hours:     hours,
		Price:     price,
		Resident:  residentClaim == "local" || residentClaim == "jubilado-local",
		Lighting:  req.Lighting,
		Status:    string(availability.StatusConfirmed),
	}

	id, err := h.repo.Create(ctx, tx, res)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "slot already reserved", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create reservation", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"reservation_id": id,
		"user_id":        userID,
		"email":          res.Email,
		"facility":       res.Facility,
		"kind":           string(res.Kind),
		"date":           res.Date.Format("2006-01-02"),
		"start_hour":     res.StartHour,
		"end_hour":       res.EndHour,
		"price":          res.Price,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "reservation",
		AggregateID:   id,
		EventType:     outbox.EventReservationConfirmed,
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(createReservationResponse{ReservationID: id, Price: price})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, userID, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req cancelReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ReservationID = strings.TrimSpace(req.ReservationID)
	if req.ReservationID == "" {
		http.Error(w, "reservation_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := h.repo.GetForUpdate(ctx, tx, userID, req.ReservationID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "reservation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load reservation", http.StatusInternalServerError)
		return
	}

	if res.Status == string(availability.StatusCancelled) {
		h.writeCancelResponse(w, res.ID, res.UpdatedAt.UTC())
		return
	}

	cancelledAt, err := h.repo.Cancel(ctx, tx, userID, res.ID)
	if err != nil {
		http.Error(w, "failed to cancel reservation", http.StatusInternalServerError)
		return
	}

	cancelPayload, err := json.Marshal(map[string]any{
		"reservation_id": res.ID,
		"user_id":        res.UserID,
		"email":          res.Email,
		"facility":       res.Facility,
		"date":           res.Date.Format("2006-01-02"),
		"start_hour":     res.StartHour,
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build cancellation event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "reservation",
		AggregateID:   res.ID,
		EventType:     outbox.EventReservationCancelled,
		Payload:       cancelPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeCancelResponse(w, res.ID, cancelledAt.UTC())
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	reservations, err := h.repo.ListByUser(r.Context(), userID, limit)
	if err != nil {
		http.Error(w, "failed to list reservations", http.StatusInternalServerError)
		return
	}

	items := make([]listReservationItem, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, listReservationItem{
			ReservationID: res.ID,
			Facility:      res.Facility,
			Kind:          string(res.Kind),
			Date:          res.Date.Format("2006-01-02"),
			StartHour:     res.StartHour,
			EndHour:       res.EndHour,
			Hours:         res.Hours,
			Price:         res.Price,
			Status:        res.Status,
			CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// normalizeInterval validates the requested hours against the day's grid and
// fills in the missing end label or duration. The closing fence is a valid
// end but never a valid start.
func (h *ReservationHandler) normalizeInterval(date time.Time, start, end string, hours int) (string, string, int, bool) {
	grid := h.seasons.OpeningHours(date)
	startIdx := indexOf(availability.StartHours(grid), start)
	if startIdx < 0 {
		return "", "", 0, false
	}
	if end == "" {
		endIdx := startIdx + hours
		if endIdx >= len(grid) {
			return "", "", 0, false
		}
		return start, grid[endIdx], hours, true
	}
	endIdx := indexOf(grid, end)
	if endIdx <= startIdx {
		return "", "", 0, false
	}
	return start, end, endIdx - startIdx, true
}

func (h *ReservationHandler) price(ctx context.Context, tx pgx.Tx, userID string, kind model.Kind, facility, residentClaim string, lighting bool, hours int, date time.Time) (float64, error) {
	resident := pricing.ParseResident(residentClaim)
	switch kind {
	case model.KindSports:
		court, ok := pricing.CourtFromFacility(facility)
		if !ok {
			return 0, pricing.ErrUnknownFacility
		}
		lights := pricing.NoLights
		if lighting {
			lights = pricing.WithLights
		}
		rate, err := pricing.CourtHourRate(court, resident, lights)
		if err != nil {
			return 0, err
		}
		return rate * float64(hours), nil
	case model.KindGym:
		covered, err := h.repo.HasActivePass(ctx, tx, userID, string(model.KindGym), date)
		if err != nil {
			h.logger.Warn("active pass lookup failed; charging daily rate", "err", err)
		}
		if covered {
			return 0, nil
		}
		return pricing.GymDailyRate(resident), nil
	default: // pool
		covered, err := h.repo.HasActivePass(ctx, tx, userID, string(model.KindPool), date)
		if err != nil {
			h.logger.Warn("active pass lookup failed; charging entry rate", "err", err)
		}
		if covered {
			return 0, nil
		}
		return pricing.PoolEntryRate(resident), nil
	}
}

func (h *ReservationHandler) writeCancelResponse(w http.ResponseWriter, reservationID string, cancelledAt time.Time) {
	writeJSON(w, http.StatusOK, cancelReservationResponse{
		ReservationID: reservationID,
		Status:        string(availability.StatusCancelled),
		CancelledAt:   cancelledAt.Format(time.RFC3339),
	})
}

func (h *ReservationHandler) finalizeIdempotencyError(ctx context.Context, tx pgx.Tx, userID, key string, statusCode int, msg string) bool {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return false
	}
	if err := h.repo.FinalizeIdempotency(ctx, tx, userID, key, "", statusCode, body); err != nil {
		h.logger.Error("failed to finalize idempotency (error)", "err", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
