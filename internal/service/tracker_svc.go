package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackdevtech455/youtube-analytics/internal/model"
	"github.com/jackdevtech455/youtube-analytics/internal/repository"
)

// ErrChannelNotFound marks a channel reference the provider does not know.
var ErrChannelNotFound = errors.New("channel reference did not resolve")

// ErrResolveUnavailable wraps a provider transport failure during create-time
// channel resolution, distinct from a reference the provider rejected.
var ErrResolveUnavailable = errors.New("channel resolution unavailable")

// ChannelResolver resolves a free-form channel reference to a canonical
// channel ID, returning "" for references the provider does not know.
type ChannelResolver interface {
	ResolveChannelID(ctx context.Context, reference string) (string, error)
}

// ValidationError carries a request-level validation failure message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// TrackerService implements tracker CRUD with bounds validation and
// channel-reference resolution at creation time.
type TrackerService struct {
	repo     *repository.TrackerRepo
	resolver ChannelResolver
}

func NewTrackerService(repo *repository.TrackerRepo, resolver ChannelResolver) *TrackerService {
	return &TrackerService{repo: repo, resolver: resolver}
}

// Create validates the request, resolves channel-mode references to a
// canonical channel ID, and persists the tracker.
func (s *TrackerService) Create(ctx context.Context, req model.TrackerCreate) (*model.Tracker, error) {
	t := model.Tracker{
		Mode:              req.Mode,
		TopN:              model.DefaultTopN,
		CandidatePoolSize: model.DefaultPoolSize,
		RankingMetric:     model.MetricViews,
		EvictionPolicy:    model.EvictLeastRecentlySeen,
		IsActive:          true,
	}

	if req.TopN != nil {
		t.TopN = *req.TopN
	}
	if req.CandidatePoolSize != nil {
		t.CandidatePoolSize = *req.CandidatePoolSize
	}
	if req.RankingMetric != nil {
		t.RankingMetric = *req.RankingMetric
	}
	if req.EvictionPolicy != nil {
		t.EvictionPolicy = *req.EvictionPolicy
	}
	t.RankingWindowHours = req.RankingWindowHours

	switch req.Mode {
	case model.ModeChannel:
		if req.ChannelID == nil || *req.ChannelID == "" {
			return nil, validationErrorf("channelId is required for channel trackers")
		}
		if req.SearchQuery != nil && *req.SearchQuery != "" {
			return nil, validationErrorf("searchQuery must be empty for channel trackers")
		}
		t.ChannelID = req.ChannelID
	case model.ModeSearch:
		if req.SearchQuery == nil || *req.SearchQuery == "" {
			return nil, validationErrorf("searchQuery is required for search trackers")
		}
		if req.ChannelID != nil && *req.ChannelID != "" {
			return nil, validationErrorf("channelId must be empty for search trackers")
		}
		t.SearchQuery = req.SearchQuery
	default:
		return nil, validationErrorf("mode must be channel or search")
	}

	if err := validateTrackerFields(&t); err != nil {
		return nil, err
	}

	if t.Mode == model.ModeChannel {
		resolved, err := s.resolver.ResolveChannelID(ctx, *t.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrResolveUnavailable, err)
		}
		if resolved == "" {
			return nil, ErrChannelNotFound
		}
		t.ChannelID = &resolved
	}

	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get returns one tracker by ID.
func (s *TrackerService) Get(ctx context.Context, id int64) (*model.Tracker, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all trackers.
func (s *TrackerService) List(ctx context.Context) ([]model.Tracker, error) {
	return s.repo.List(ctx)
}

// Patch applies a partial update and returns the updated tracker.
func (s *TrackerService) Patch(ctx context.Context, id int64, req model.TrackerPatch) (*model.Tracker, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TopN != nil {
		t.TopN = *req.TopN
	}
	if req.CandidatePoolSize != nil {
		t.CandidatePoolSize = *req.CandidatePoolSize
	}
	if req.RankingMetric != nil {
		t.RankingMetric = *req.RankingMetric
	}
	if req.RankingWindowHours != nil {
		t.RankingWindowHours = req.RankingWindowHours
	}
	if req.EvictionPolicy != nil {
		t.EvictionPolicy = *req.EvictionPolicy
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := validateTrackerFields(t); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a tracker and, by cascade, its candidate memberships.
func (s *TrackerService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateTrackerFields(t *model.Tracker) error {
	if t.TopN < model.MinTopN || t.TopN > model.MaxTopN {
		return validationErrorf("topN must be between %d and %d", model.MinTopN, model.MaxTopN)
	}
	if t.CandidatePoolSize < model.MinPoolSize || t.CandidatePoolSize > model.MaxPoolSize {
		return validationErrorf("candidatePoolSize must be between %d and %d", model.MinPoolSize, model.MaxPoolSize)
	}
	if !model.ValidMetric(t.RankingMetric) {
		return validationErrorf("unknown rankingMetric: %s", t.RankingMetric)
	}
	if t.RankingWindowHours != nil &&
		(*t.RankingWindowHours < model.MinWindowHours || *t.RankingWindowHours > model.MaxWindowHours) {
		return validationErrorf("rankingWindowHours must be between %d and %d", model.MinWindowHours, model.MaxWindowHours)
	}
	if !model.ValidEvictionPolicy(t.EvictionPolicy) {
		return validationErrorf("unknown evictionPolicy: %s", t.EvictionPolicy)
	}
	return nil
}
