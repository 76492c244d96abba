// File: models/attendance.go
package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActionKind is an on-site action a scanner can authorize.
type ActionKind string

const (
	ActionMeal                  ActionKind = "meal"
	ActionWorkshopAttendance    ActionKind = "workshop_attendance"
	ActionCompetitionCheckin    ActionKind = "competition_checkin"
	ActionAccommodationCheckin  ActionKind = "accommodation_checkin"
	ActionAccommodationCheckout ActionKind = "accommodation_checkout"
)

// AllActionKinds lists every action kind.
var AllActionKinds = []ActionKind{
	ActionMeal,
	ActionWorkshopAttendance,
	ActionCompetitionCheckin,
	ActionAccommodationCheckin,
	ActionAccommodationCheckout,
}

// ParseActionKind rejects unknown action kinds.
func ParseActionKind(s string) (ActionKind, error) {
	for _, k := range AllActionKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Collection names the log collection the action is recorded in.
func (k ActionKind) Collection() string {
	switch k {
	case ActionMeal:
		return "meals"
	case ActionWorkshopAttendance:
		return "workshop_attendance"
	case ActionCompetitionCheckin:
		return "competition_checkins"
	case ActionAccommodationCheckin, ActionAccommodationCheckout:
		return "accommodation_logs"
	}
	return ""
}

// MealType is the meal being served at a food counter.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnacks    MealType = "snacks"
)

// ParseMealType rejects unknown meals.
func ParseMealType(s string) (MealType, error) {
	switch MealType(s) {
	case MealBreakfast, MealLunch, MealDinner, MealSnacks:
		return MealType(s), nil
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// AttendanceRecord is an append-only event for one participant action.
// Detail carries the meal type or the track name; Date is YYYY-MM-DD in the
// event timezone.
type AttendanceRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParticipantID  primitive.ObjectID `bson:"participant_id" json:"participant_id"`
	RegistrationID primitive.ObjectID `bson:"registration_id" json:"registration_id"`
	Kind           ActionKind         `bson:"kind" json:"kind"`
	Detail         string             `bson:"detail" json:"detail"`
	Date           string             `bson:"date" json:"date"`
	RecordedBy     string             `bson:"recorded_by" json:"recorded_by"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
