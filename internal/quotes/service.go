package quotes

import (
	"context"
	"time"

	"github.com/chauffio/chauffio/pkg/eventbus"
	"github.com/chauffio/chauffio/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AutoExpireReason is recorded on batch-expired quotes.
const AutoExpireReason = "Auto-expired"

// Service coordinates quote transitions: persistence, metrics and events.
type Service struct {
	repo *Repository
	bus  *eventbus.Bus
}

// NewService wires the quotes service. The event bus is optional.
func NewService(repo *Repository, bus *eventbus.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// Transition moves a quote to a new status and runs the acceptance side
// effects. Events publish after commit, best effort.
func (s *Service) Transition(ctx context.Context, orgID, quoteID uuid.UUID, to Status, reason, changedBy string) (*Quote, error) {
	now := time.Now().UTC()

	before, err := s.repo.GetQuote(ctx, orgID, quoteID)
	if err != nil {
		return nil, err
	}
	from := before.Status

	quote, order, err := s.repo.Transition(ctx, orgID, quoteID, to, reason, changedBy, now)
	if err != nil {
		return nil, err
	}

	quoteTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	s.publishTransition(ctx, quote, from, to, reason, order)

	logger.InfoContext(ctx, "quote transitioned",
		zap.String("quote_id", quoteID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return quote, nil
}

// ExpireBatch moves every overdue open quote to EXPIRED. Quotes that
// reached a terminal state between the scan and the transition are skipped.
func (s *Service) ExpireBatch(ctx context.Context, batchSize int) (int, error) {
	now := time.Now().UTC()

	candidates, err := s.repo.ListExpirable(ctx, now, batchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range candidates {
		q := &candidates[i]
		if !q.ShouldAutoExpire(now) {
			continue
		}

		quote, _, err := s.repo.Transition(ctx, q.OrganizationID, q.ID, StatusExpired, AutoExpireReason, "system", now)
		if err != nil {
			// A concurrent transition beat us to a terminal state.
			logger.WarnContext(ctx, "skipping quote during auto-expiry",
				zap.String("quote_id", q.ID.String()),
				zap.Error(err),
			)
			continue
		}

		expired++
		quoteTransitionsTotal.WithLabelValues(string(q.Status), string(StatusExpired)).Inc()
		s.publishTransition(ctx, quote, q.Status, StatusExpired, AutoExpireReason, nil)
	}

	if expired > 0 {
		logger.InfoContext(ctx, "auto-expired quotes", zap.Int("count", expired))
	}
	return expired, nil
}

// RunAutoExpiry runs the batch expirer on a ticker until the context ends.
func (s *Service) RunAutoExpiry(ctx context.Context, interval time.Duration, batchSize int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ExpireBatch(ctx, batchSize); err != nil {
				logger.WarnContext(ctx, "auto-expiry batch failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) publishTransition(ctx context.Context, quote *Quote, from, to Status, reason string, order *Order) {
	if s.bus == nil {
		return
	}

	changed := eventbus.QuoteStatusChangedData{
		QuoteID:        quote.ID,
		OrganizationID: quote.OrganizationID,
		PreviousStatus: string(from),
		NewStatus:      string(to),
		OccurredAt:     quote.UpdatedAt,
	}
	if reason != "" {
		changed.Reason = &reason
	}
	s.publish(ctx, eventbus.SubjectQuoteStatusChanged, changed)

	if to == StatusAccepted {
		accepted := eventbus.QuoteAcceptedData{
			QuoteID:        quote.ID,
			OrganizationID: quote.OrganizationID,
			AcceptedAt:     quote.UpdatedAt,
		}
		if order != nil {
			accepted.OrderID = order.ID
			accepted.OrderReference = order.Reference
		} else if quote.OrderID != nil {
			accepted.OrderID = *quote.OrderID
		}
		s.publish(ctx, eventbus.SubjectQuoteAccepted, accepted)
	}
}

func (s *Service) publish(ctx context.Context, subject string, payload interface{}) {
	event, err := eventbus.NewEvent(subject, "quotes", payload)
	if err != nil {
		logger.WarnContext(ctx, "failed to build event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
