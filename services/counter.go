// File: services/counter.go
package services

import (
	"context"
	"fmt"

	"conference-desk/models"
	"conference-desk/store"
)

// RegistrationCounter turns persisted registrations into used-slot counts.
type RegistrationCounter struct {
	repo store.Repository
}

// NewRegistrationCounter creates a counter over repo.
func NewRegistrationCounter(repo store.Repository) *RegistrationCounter {
	return &RegistrationCounter{repo: repo}
}

// CountByTrack sums team sizes of registrations that chose t. A store failure
// is returned as an error rather than a zero count.
func (c *RegistrationCounter) CountByTrack(ctx context.Context, t models.Track) (int, error) {
	n, err := c.repo.SumTeamSize(ctx, t.Field(), string(t))
	if err != nil {
		return 0, fmt.Errorf("count %s registrations: %w", t, err)
	}
	return n, nil
}

// CountTotalParticipants counts every team member regardless of track.
func (c *RegistrationCounter) CountTotalParticipants(ctx context.Context) (int, error) {
	n, err := c.repo.CountParticipants(ctx)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return n, nil
}
