// File: models/registration.go
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ----------------------- registration status -----------------------

// RegistrationStatus is the soft state of a team registration. Registrations
// are never deleted; they only move forward through these states.
type RegistrationStatus string

const (
	StatusPending       RegistrationStatus = "pending"
	StatusPendingReview RegistrationStatus = "pending_review"
	StatusConfirmed     RegistrationStatus = "confirmed"
	StatusCompleted     RegistrationStatus = "completed"
)

func (s RegistrationStatus) rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusPendingReview:
		return 2
	case StatusConfirmed:
		return 3
	case StatusCompleted:
		return 4
	}
	return 0
}

// ParseRegistrationStatus rejects anything outside the four known states.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	st := RegistrationStatus(s)
	if st.rank() == 0 {
		return "", fmt.Errorf("unknown registration status %q", s)
	}
	return st, nil
}

// CanAdvanceTo reports whether moving from s to next goes strictly forward.
func (s RegistrationStatus) CanAdvanceTo(next RegistrationStatus) bool {
	return next.rank() > s.rank() && s.rank() > 0
}

// OnSite reports whether a team in this state may use on-site services.
func (s RegistrationStatus) OnSite() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// ----------------------- registration model -----------------------

// Registration is one team application.
type Registration struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TeamName         string             `bson:"team_name" json:"team_name"`
	College          string             `bson:"college" json:"college"`
	WorkshopTrack    WorkshopTrack      `bson:"workshop_track" json:"workshop_track"`
	CompetitionTrack CompetitionTrack   `bson:"competition_track" json:"competition_track"`
	TeamSize         int                `bson:"team_size" json:"team_size"`
	Status           RegistrationStatus `bson:"status" json:"status"`
	AmountPaid       float64            `bson:"amount_paid" json:"amount_paid"`
	DirectJoin       bool               `bson:"direct_join" json:"direct_join"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// Tracks returns the capacity tracks this registration consumes slots in.
func (r *Registration) Tracks() []Track {
	var out []Track
	if t, ok := r.WorkshopTrack.Track(); ok {
		out = append(out, t)
	}
	if t, ok := r.CompetitionTrack.Track(); ok {
		out = append(out, t)
	}
	return out
}
