package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackdevtech455/youtube-analytics/internal/model"
)

func strPtr(s string) *string { return &s }

func validTracker() model.Tracker {
	return model.Tracker{
		Mode:              model.ModeSearch,
		TopN:              model.DefaultTopN,
		CandidatePoolSize: model.DefaultPoolSize,
		RankingMetric:     model.MetricViews,
		EvictionPolicy:    model.EvictLeastRecentlySeen,
	}
}

func TestValidateTrackerFields_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Tracker)
		wantOK bool
	}{
		{"defaults", func(*model.Tracker) {}, true},
		{"topN at min", func(tr *model.Tracker) { tr.TopN = model.MinTopN }, true},
		{"topN at max", func(tr *model.Tracker) { tr.TopN = model.MaxTopN }, true},
		{"topN below min", func(tr *model.Tracker) { tr.TopN = 0 }, false},
		{"topN above max", func(tr *model.Tracker) { tr.TopN = 201 }, false},
		{"pool at min", func(tr *model.Tracker) { tr.CandidatePoolSize = model.MinPoolSize }, true},
		{"pool below min", func(tr *model.Tracker) { tr.CandidatePoolSize = 19 }, false},
		{"pool above max", func(tr *model.Tracker) { tr.CandidatePoolSize = 1001 }, false},
		{"window at max", func(tr *model.Tracker) { tr.RankingWindowHours = intPtr(model.MaxWindowHours) }, true},
		{"window zero", func(tr *model.Tracker) { tr.RankingWindowHours = intPtr(0) }, false},
		{"window above max", func(tr *model.Tracker) { tr.RankingWindowHours = intPtr(model.MaxWindowHours + 1) }, false},
		{"window absent", func(tr *model.Tracker) { tr.RankingWindowHours = nil }, true},
		{"unknown metric", func(tr *model.Tracker) { tr.RankingMetric = "subscribers" }, false},
		{"velocity metric", func(tr *model.Tracker) { tr.RankingMetric = model.MetricViewsVelocity }, true},
		{"unknown eviction policy", func(tr *model.Tracker) { tr.EvictionPolicy = "random" }, false},
		{"lowest source rank policy", func(tr *model.Tracker) { tr.EvictionPolicy = model.EvictLowestSourceRank }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := validTracker()
			tt.mutate(&tr)

			err := validateTrackerFields(&tr)
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK {
				if err == nil {
					t.Fatal("expected a validation error")
				}
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("error type = %T, want *ValidationError", err)
				}
			}
		})
	}
}

func TestCreate_ModeSelectorExclusivity(t *testing.T) {
	// Requests below fail validation before any provider or store call, so a
	// zero-value service is enough.
	svc := &TrackerService{}
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.TrackerCreate
	}{
		{"channel mode without channelId", model.TrackerCreate{Mode: model.ModeChannel}},
		{"channel mode with searchQuery", model.TrackerCreate{
			Mode:        model.ModeChannel,
			ChannelID:   strPtr("UCabc"),
			SearchQuery: strPtr("golang"),
		}},
		{"search mode without query", model.TrackerCreate{Mode: model.ModeSearch}},
		{"search mode with channelId", model.TrackerCreate{
			Mode:        model.ModeSearch,
			SearchQuery: strPtr("golang"),
			ChannelID:   strPtr("UCabc"),
		}},
		{"unknown mode", model.TrackerCreate{Mode: "playlist"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error = %v, want *ValidationError", err)
			}
		})
	}
}

type stubResolver struct {
	id  string
	err error
}

func (r stubResolver) ResolveChannelID(context.Context, string) (string, error) {
	return r.id, r.err
}

func TestCreate_ResolutionTransportFailure(t *testing.T) {
	svc := NewTrackerService(nil, stubResolver{err: errors.New("connect: timeout")})

	_, err := svc.Create(context.Background(), model.TrackerCreate{
		Mode:      model.ModeChannel,
		ChannelID: strPtr("@someone"),
	})
	if !errors.Is(err, ErrResolveUnavailable) {
		t.Errorf("error = %v, want ErrResolveUnavailable", err)
	}
}

func TestCreate_UnknownChannelReference(t *testing.T) {
	svc := NewTrackerService(nil, stubResolver{})

	_, err := svc.Create(context.Background(), model.TrackerCreate{
		Mode:      model.ModeChannel,
		ChannelID: strPtr("@nobody"),
	})
	if !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("error = %v, want ErrChannelNotFound", err)
	}
}

func TestCreate_DefaultsApplied(t *testing.T) {
	// Out-of-range overrides fail before resolution, proving the override is
	// what is validated rather than the default.
	svc := &TrackerService{}
	_, err := svc.Create(context.Background(), model.TrackerCreate{
		Mode:        model.ModeSearch,
		SearchQuery: strPtr("golang"),
		TopN:        intPtr(0),
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}
