package subcontracting

import (
	"context"
	"time"

	"github.com/chauffio/chauffio/pkg/eventbus"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/chauffio/chauffio/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service ranks subcontractor candidates and executes handovers.
type Service struct {
	repo *Repository
	bus  *eventbus.Bus
}

// NewService wires the subcontracting service. The event bus is optional.
func NewService(repo *Repository, bus *eventbus.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

// FindCandidates returns scored subcontractors for a mission, best first.
func (s *Service) FindCandidates(ctx context.Context, orgID uuid.UUID, profile MissionProfile) ([]Candidate, error) {
	subs, err := s.repo.ListActiveSubcontractors(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return RankCandidates(subs, profile), nil
}

// MatchEmptyLegs returns the usable empty legs for a planned trip.
func (s *Service) MatchEmptyLegs(ctx context.Context, orgID uuid.UUID, pickup, dropoff geo.Point, pickupAt time.Time) ([]EmptyLeg, error) {
	now := time.Now().UTC()
	legs, err := s.repo.ListActiveEmptyLegs(ctx, orgID, now)
	if err != nil {
		return nil, err
	}
	return MatchEmptyLegs(legs, pickup, dropoff, pickupAt, now), nil
}

// Subcontract hands a mission over and publishes the event after commit.
func (s *Service) Subcontract(ctx context.Context, orgID, missionID, subcontractorID uuid.UUID, agreedPrice float64, changedBy string) error {
	now := time.Now().UTC()
	if err := s.repo.Subcontract(ctx, orgID, missionID, subcontractorID, agreedPrice, changedBy, now); err != nil {
		return err
	}

	if s.bus != nil {
		payload := eventbus.QuoteSubcontractedData{
			MissionID:       missionID,
			OrganizationID:  orgID,
			SubcontractorID: subcontractorID,
			AgreedPrice:     agreedPrice,
			OccurredAt:      now,
		}
		event, err := eventbus.NewEvent(eventbus.SubjectQuoteSubcontracted, "subcontracting", payload)
		if err == nil {
			if err := s.bus.Publish(ctx, eventbus.SubjectQuoteSubcontracted, event); err != nil {
				logger.WarnContext(ctx, "failed to publish subcontract event", zap.Error(err))
			}
		}
	}

	logger.InfoContext(ctx, "mission subcontracted",
		zap.String("mission_id", missionID.String()),
		zap.String("subcontractor_id", subcontractorID.String()),
	)
	return nil
}
