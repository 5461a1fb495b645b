package passes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/outbox"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/storage"
)

// Service encapsulates pass state transitions and their side effects (outbox
// events). The reservation service consumes these events to keep its local
// active-pass cache current.
type Service struct {
	repo       *storage.Repository
	outboxRepo *outbox.Repository
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository) *Service {
	return &Service{repo: repo, outboxRepo: outboxRepo}
}

func (s *Service) Activate(ctx context.Context, tx pgx.Tx, p storage.Pass) error {
	if err := s.repo.Create(ctx, tx, p); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"pass_id":     p.ID,
		"user_id":     p.UserID,
		"kind":        p.Kind,
		"pass_type":   p.PassType,
		"valid_from":  p.ValidFrom.UTC().Format(time.RFC3339),
		"valid_until": p.ValidUntil.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "pass",
		AggregateID:   p.ID,
		EventType:     outbox.EventPassActivated,
		Payload:       payload,
	})
}

func (s *Service) Cancel(ctx context.Context, tx pgx.Tx, p storage.Pass, cancelledAt time.Time) error {
	if _, err := s.repo.Cancel(ctx, tx, p.ID); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"pass_id":      p.ID,
		"user_id":      p.UserID,
		"kind":         p.Kind,
		"cancelled_at": cancelledAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return s.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "pass",
		AggregateID:   p.ID,
		EventType:     outbox.EventPassCancelled,
		Payload:       payload,
	})
}
