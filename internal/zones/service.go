package zones

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/chauffio/chauffio/pkg/cache"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/google/uuid"
)

// ZoneLister loads active zones for an organization.
type ZoneLister interface {
	ListActiveZones(ctx context.Context, orgID uuid.UUID) ([]Zone, error)
}

// Service exposes zone classification backed by the repository, with an
// optional cache in front of the zone list and a per-organization spatial
// index over it.
type Service struct {
	repo  ZoneLister
	cache *cache.Manager

	mu      sync.Mutex
	indexes map[uuid.UUID]indexEntry
}

type indexEntry struct {
	idx         *SpatialIndex
	fingerprint string
}

// NewService creates a new zones service. The cache may be nil.
func NewService(repo ZoneLister, cacheManager *cache.Manager) *Service {
	return &Service{
		repo:    repo,
		cache:   cacheManager,
		indexes: make(map[uuid.UUID]indexEntry),
	}
}

// ActiveZones returns an organization's active zones, cached briefly.
func (s *Service) ActiveZones(ctx context.Context, orgID uuid.UUID) ([]Zone, error) {
	if s.cache == nil {
		return s.repo.ListActiveZones(ctx, orgID)
	}

	var result []Zone
	err := s.cache.GetOrSet(ctx, cache.Keys.ActiveZones(orgID.String()), cache.TTL.Zones(), &result, func() (interface{}, error) {
		return s.repo.ListActiveZones(ctx, orgID)
	})
	if err != nil {
		// Cache problems must never break classification.
		return s.repo.ListActiveZones(ctx, orgID)
	}
	return result, nil
}

// ActiveZoneIndex returns the active zones together with the spatial index
// over them.
func (s *Service) ActiveZoneIndex(ctx context.Context, orgID uuid.UUID) ([]Zone, *SpatialIndex, error) {
	zoneSet, err := s.ActiveZones(ctx, orgID)
	if err != nil {
		return nil, nil, err
	}
	return zoneSet, s.indexFor(orgID, zoneSet), nil
}

// Classify resolves the winning zone for a point. Candidates come from the
// spatial index.
func (s *Service) Classify(ctx context.Context, orgID uuid.UUID, p geo.Point, strategy ConflictStrategy) (*ClassifyResponse, error) {
	zoneSet, err := s.ActiveZones(ctx, orgID)
	if err != nil {
		return nil, err
	}

	idx := s.indexFor(orgID, zoneSet)
	matches := ClassifyPointAll(p, idx.Candidates(p), strategy)
	resp := &ClassifyResponse{Matches: matches}
	if len(matches) > 0 {
		winner := matches[0]
		resp.Zone = &winner
	}
	return resp, nil
}

// indexFor reuses the organization's index until its zone set changes.
func (s *Service) indexFor(orgID uuid.UUID, zoneSet []Zone) *SpatialIndex {
	fp := zoneFingerprint(zoneSet)

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.indexes[orgID]; ok && entry.fingerprint == fp {
		return entry.idx
	}

	idx := NewSpatialIndex(zoneSet)
	s.indexes[orgID] = indexEntry{idx: idx, fingerprint: fp}
	return idx
}

// zoneFingerprint changes whenever a zone is added, removed or updated.
func zoneFingerprint(zoneSet []Zone) string {
	var sb strings.Builder
	for _, z := range zoneSet {
		sb.WriteString(z.ID.String())
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatInt(z.UpdatedAt.UnixNano(), 10))
		sb.WriteByte(';')
	}
	return sb.String()
}
