package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joey603/sidour-avoda/internal/domain"
	"github.com/joey603/sidour-avoda/internal/events"
	"github.com/joey603/sidour-avoda/internal/repository"
	apperrors "github.com/joey603/sidour-avoda/pkg/util/errorutil"
)

const siteInfoCacheTTL = 5 * time.Minute

// PublicSiteInfo is the unauthenticated view of a site shown on the
// worker registration page.
type PublicSiteInfo struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Shifts []domain.ShiftSlot `json:"shifts"`
}

// WorkerRegistration carries the public registration form fields.
type WorkerRegistration struct {
	Name         string
	MaxShifts    int
	Roles        []string
	Availability []domain.AvailabilitySlot
}

// SiteService manages director sites and public worker enrollment.
type SiteService struct {
	sites      repository.SiteRepository
	cache      *redis.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSiteService builds the service. The cache client may be nil.
func NewSiteService(sites repository.SiteRepository, cache *redis.Client, dispatcher events.Dispatcher, logger *zap.Logger) *SiteService {
	return &SiteService{sites: sites, cache: cache, dispatcher: dispatcher, logger: logger}
}

// Create registers a new site for the director.
func (s *SiteService) Create(ctx context.Context, directorID, name string, shifts []domain.ShiftSlot) (*domain.Site, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("site name required", nil)
	}
	site := &domain.Site{DirectorID: directorID, Name: name, Shifts: shifts}
	if err := s.sites.Create(ctx, site); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventSiteCreated, site.ID, events.SiteCreatedPayload{
		DirectorID: directorID,
		Name:       name,
	})
	return site, nil
}

// ListForDirector returns the director's sites with enrolled worker counts.
func (s *SiteService) ListForDirector(ctx context.Context, directorID string) ([]domain.SiteSummary, error) {
	return s.sites.ListByDirector(ctx, directorID)
}

// Delete removes a site owned by the director and drops its cached info.
func (s *SiteService) Delete(ctx context.Context, directorID, siteID string) error {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("site", nil)
		}
		return err
	}
	if site.DirectorID != directorID {
		return apperrors.NewForbidden("site belongs to another director")
	}

	if err := s.sites.Delete(ctx, directorID, siteID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("site", nil)
		}
		return err
	}

	s.dropCachedInfo(ctx, siteID)
	s.publish(ctx, events.EventSiteDeleted, siteID, events.SiteDeletedPayload{
		DirectorID: directorID,
		Name:       site.Name,
	})
	return nil
}

// PublicInfo returns the registration-page view of a site, cached in Redis.
func (s *SiteService) PublicInfo(ctx context.Context, siteID string) (*PublicSiteInfo, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, siteInfoCacheKey(siteID)).Bytes()
		if err == nil {
			var info PublicSiteInfo
			if jsonErr := json.Unmarshal(cached, &info); jsonErr == nil {
				return &info, nil
			}
		}
	}

	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("site", nil)
		}
		return nil, err
	}

	info := &PublicSiteInfo{ID: site.ID, Name: site.Name, Shifts: site.Shifts}
	if s.cache != nil {
		if payload, err := json.Marshal(info); err == nil {
			if err := s.cache.Set(ctx, siteInfoCacheKey(siteID), payload, siteInfoCacheTTL).Err(); err != nil {
				s.logger.Warn("site info cache write failed", zap.Error(err))
			}
		}
	}
	return info, nil
}

// RegisterWorker enrolls a worker on a site through the public form.
func (s *SiteService) RegisterWorker(ctx context.Context, siteID string, in WorkerRegistration) (*domain.SiteWorker, error) {
	if in.Name == "" {
		return nil, apperrors.NewValidationError("worker name required", nil)
	}
	if in.MaxShifts <= 0 {
		return nil, apperrors.NewValidationError("max shifts must be positive", nil)
	}

	if _, err := s.sites.GetByID(ctx, siteID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("site", nil)
		}
		return nil, err
	}

	worker := &domain.SiteWorker{
		SiteID:       siteID,
		Name:         in.Name,
		MaxShifts:    in.MaxShifts,
		Roles:        in.Roles,
		Availability: in.Availability,
	}
	if err := s.sites.AddWorker(ctx, worker); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventWorkerRegistered, siteID, events.WorkerRegisteredPayload{
		WorkerName: in.Name,
		MaxShifts:  in.MaxShifts,
	})
	return worker, nil
}

func (s *SiteService) publish(ctx context.Context, eventType events.EventType, siteID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SiteID:    siteID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func (s *SiteService) dropCachedInfo(ctx context.Context, siteID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, siteInfoCacheKey(siteID)).Err(); err != nil {
		s.logger.Warn("site info cache delete failed", zap.Error(err))
	}
}

func siteInfoCacheKey(siteID string) string {
	return "site:info:" + siteID
}
