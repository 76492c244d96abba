// File: models/participant.go
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the tag carried in a QR badge.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// ParseRole rejects unknown role tags.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleParticipant, RoleCoordinator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// AccommodationStatus tracks a participant's stay. Transitions only move forward:
// not_requested -> requested -> checked_in -> checked_out.
type AccommodationStatus string

const (
	AccommodationNotRequested AccommodationStatus = "not_requested"
	AccommodationRequested    AccommodationStatus = "requested"
	AccommodationCheckedIn    AccommodationStatus = "checked_in"
	AccommodationCheckedOut   AccommodationStatus = "checked_out"
)

// Participant is one team member.
type Participant struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RegistrationID      primitive.ObjectID  `bson:"registration_id" json:"registration_id"`
	Name                string              `bson:"name" json:"name"`
	Email               string              `bson:"email" json:"email"`
	Phone               string              `bson:"phone" json:"phone"`
	Gender              string              `bson:"gender" json:"gender"`
	FoodPreference      string              `bson:"food_preference" json:"food_preference"`
	Role                Role                `bson:"role" json:"role"`
	AccommodationStatus AccommodationStatus `bson:"accommodation_status" json:"accommodation_status"`
	Present             bool                `bson:"present" json:"present"`
	QRPayload           string              `bson:"qr_payload,omitempty" json:"qr_payload,omitempty"`
	QRImage             string              `bson:"qr_image,omitempty" json:"-"`
	CreatedAt           time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time           `bson:"updated_at" json:"updated_at"`
}
