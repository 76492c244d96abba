// Package store persists registrations, team members and attendance logs.
// File: store/store.go
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"conference-desk/models"
)

var (
	// ErrNotFound means the query matched no document.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a unique index rejected the write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStateConflict means a conditional update found the document in another state.
	ErrStateConflict = errors.New("document is not in the expected state")
	// ErrUnavailable wraps every driver or connectivity failure. It is never
	// returned for a query that legitimately matched nothing.
	ErrUnavailable = errors.New("store unavailable")
)

// Repository is the persistence surface the services depend on.
type Repository interface {
	InsertRegistration(ctx context.Context, r *models.Registration) error
	GetRegistration(ctx context.Context, id primitive.ObjectID) (*models.Registration, error)
	ListRegistrations(ctx context.Context, status models.RegistrationStatus) ([]models.Registration, error)
	UpdateRegistrationStatus(ctx context.Context, id primitive.ObjectID, from, to models.RegistrationStatus) error
	DeleteRegistration(ctx context.Context, id primitive.ObjectID) error
	SumTeamSize(ctx context.Context, field, value string) (int, error)

	InsertParticipants(ctx context.Context, ps []*models.Participant) error
	GetParticipant(ctx context.Context, id primitive.ObjectID) (*models.Participant, error)
	ListParticipants(ctx context.Context, registrationID primitive.ObjectID) ([]models.Participant, error)
	CountParticipants(ctx context.Context) (int, error)
	SaveParticipantQR(ctx context.Context, id primitive.ObjectID, payload, image string) error
	MarkPresent(ctx context.Context, id primitive.ObjectID) error
	TransitionAccommodation(ctx context.Context, id primitive.ObjectID, from, to models.AccommodationStatus) error

	FindAttendance(ctx context.Context, kind models.ActionKind, participantID primitive.ObjectID, detail, date string) (*models.AttendanceRecord, error)
	InsertAttendance(ctx context.Context, rec *models.AttendanceRecord) error
	CountAttendance(ctx context.Context, date string) (map[models.ActionKind]int, error)
}
