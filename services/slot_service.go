// Package services: services/slot_service.go
package services

import (
	"context"

	"conference-desk/logger"
	"conference-desk/models"
)

// TrackSlot is the capacity view of one track.
type TrackSlot struct {
	Track models.Track     `json:"track"`
	Kind  models.TrackKind `json:"kind"`
	SlotStatus
}

// SlotStats is the combined open/closed view for the registration page and dashboards.
type SlotStats struct {
	Tracks              []TrackSlot `json:"tracks"`
	TotalParticipants   int         `json:"total_participants"`
	MaxParticipants     int         `json:"max_participants"`
	EventClosed         bool        `json:"event_closed"`
	DirectJoinThreshold int         `json:"direct_join_threshold"`
	DirectJoinAvailable bool        `json:"direct_join_available"`
}

// Track finds the slot for t.
func (s SlotStats) Track(t models.Track) (TrackSlot, bool) {
	for _, ts := range s.Tracks {
		if ts.Track == t {
			return ts, true
		}
	}
	return TrackSlot{}, false
}

// SlotMetrics receives capacity gauges after each stats read.
type SlotMetrics interface {
	PublishTrackUsage(track string, used, max, remaining int)
	PublishTotalParticipants(total, max int)
}

type SlotServiceInterface interface {
	Stats(ctx context.Context) (SlotStats, error)
	TrackStatus(ctx context.Context, t models.Track) (TrackSlot, error)
	IsOpen(ctx context.Context, t models.Track) (bool, error)
}

// SlotService combines the ledger and the counter.
type SlotService struct {
	ledger  *Ledger
	counter *RegistrationCounter
	metrics SlotMetrics
}

// ensure SlotService implements SlotServiceInterface
var _ SlotServiceInterface = (*SlotService)(nil)

// NewSlotService creates a SlotService. metrics may be nil.
func NewSlotService(ledger *Ledger, counter *RegistrationCounter, metrics SlotMetrics) *SlotService {
	return &SlotService{ledger: ledger, counter: counter, metrics: metrics}
}

// Stats reads every track count and the participant total once. Track caps
// and the global cap are evaluated independently; callers decide which to honour.
func (s *SlotService) Stats(ctx context.Context) (SlotStats, error) {
	stats := SlotStats{Tracks: make([]TrackSlot, 0, len(models.AllTracks))}

	for _, t := range models.AllTracks {
		used, err := s.counter.CountByTrack(ctx, t)
		if err != nil {
			logger.Error().Err(err).Str("track", string(t)).Msg("Stats: track count failed")
			return SlotStats{}, err
		}
		stats.Tracks = append(stats.Tracks, TrackSlot{Track: t, Kind: t.Kind(), SlotStatus: s.ledger.Track(t, used)})
	}

	total, err := s.counter.CountTotalParticipants(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Stats: participant count failed")
		return SlotStats{}, err
	}
	event := s.ledger.Event(total)
	stats.TotalParticipants = event.Used
	stats.MaxParticipants = event.Max
	stats.EventClosed = event.Closed
	stats.DirectJoinThreshold = s.ledger.DirectJoinThreshold()
	stats.DirectJoinAvailable = s.ledger.DirectJoinAvailable(event.Used)

	logger.Debug().Int("total", stats.TotalParticipants).Bool("event_closed", stats.EventClosed).
		Bool("direct_join", stats.DirectJoinAvailable).Msg("Stats: computed slot stats")

	if s.metrics != nil {
		for _, ts := range stats.Tracks {
			s.metrics.PublishTrackUsage(string(ts.Track), ts.Used, ts.Max, ts.Remaining)
		}
		s.metrics.PublishTotalParticipants(stats.TotalParticipants, stats.MaxParticipants)
	}
	return stats, nil
}

// TrackStatus reads a single track.
func (s *SlotService) TrackStatus(ctx context.Context, t models.Track) (TrackSlot, error) {
	used, err := s.counter.CountByTrack(ctx, t)
	if err != nil {
		return TrackSlot{}, err
	}
	return TrackSlot{Track: t, Kind: t.Kind(), SlotStatus: s.ledger.Track(t, used)}, nil
}

// IsOpen reports whether t still has slots. A failed count is an error, not "open".
func (s *SlotService) IsOpen(ctx context.Context, t models.Track) (bool, error) {
	slot, err := s.TrackStatus(ctx, t)
	if err != nil {
		return false, err
	}
	return !slot.Closed, nil
}
