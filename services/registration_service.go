// Package services: services/registration_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"conference-desk/logger"
	"conference-desk/models"
	"conference-desk/store"
)

// Routing keys for domain events.
const (
	EventRegistrationSubmitted     = "registration.submitted"
	EventRegistrationStatusChanged = "registration.status_changed"
	EventAttendanceRecorded        = "attendance.recorded"
)

// EventPublisher fans domain events out to other systems (mailers, sheets, ...).
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// MemberInput is one team member in a submission.
type MemberInput struct {
	Name           string
	Email          string
	Phone          string
	Gender         string
	FoodPreference string
	Accommodation  bool
}

// SubmitRequest is a team registration.
type SubmitRequest struct {
	TeamName         string
	College          string
	WorkshopTrack    models.WorkshopTrack
	CompetitionTrack models.CompetitionTrack
	AmountPaid       float64
	DirectJoin       bool
	Members          []MemberInput
}

// RegistrationDetail is a registration with its team members.
type RegistrationDetail struct {
	Registration models.Registration `json:"registration"`
	Members      []models.Participant `json:"members"`
}

type RegistrationServiceInterface interface {
	Submit(ctx context.Context, req SubmitRequest) (*RegistrationDetail, error)
	Get(ctx context.Context, id string) (*RegistrationDetail, error)
	List(ctx context.Context, status string) ([]models.Registration, error)
	AdvanceStatus(ctx context.Context, id, status string) (*models.Registration, error)
}

// RegistrationService accepts team registrations against the slot view.
type RegistrationService struct {
	repo   store.Repository
	slots  SlotServiceInterface
	qr     QRServiceInterface
	events EventPublisher
	locks  *keyLocker
	now    func() time.Time
}

// ensure RegistrationService implements RegistrationServiceInterface
var _ RegistrationServiceInterface = (*RegistrationService)(nil)

// NewRegistrationService wires the registration flow. events may be nil.
func NewRegistrationService(repo store.Repository, slots SlotServiceInterface, qr QRServiceInterface, events EventPublisher) *RegistrationService {
	return &RegistrationService{
		repo:   repo,
		slots:  slots,
		qr:     qr,
		events: events,
		locks:  newKeyLocker(),
		now:    time.Now,
	}
}

func validateSubmit(req SubmitRequest) error {
	if strings.TrimSpace(req.TeamName) == "" {
		return invalid("team_name", "is required")
	}
	if len(req.Members) == 0 {
		return invalid("members", "a team needs at least one member")
	}
	for i, m := range req.Members {
		if strings.TrimSpace(m.Name) == "" {
			return invalid("members", "member %d has no name", i+1)
		}
		if strings.TrimSpace(m.Email) == "" {
			return invalid("members", "member %d has no email", i+1)
		}
	}
	if _, err := models.ParseWorkshopTrack(string(req.WorkshopTrack)); err != nil {
		return invalid("workshop_track", "%v", err)
	}
	if _, err := models.ParseCompetitionTrack(string(req.CompetitionTrack)); err != nil {
		return invalid("competition_track", "%v", err)
	}
	if req.AmountPaid < 0 {
		return invalid("amount_paid", "must not be negative")
	}
	return nil
}

// Submit checks the slot view and stores the team. The capacity check is
// advisory: it rejects tracks that are already closed at submission time, but
// a team larger than the remaining slots is still accepted and may push the
// track past its limit. Submissions are serialized in-process so two requests
// cannot both read the same pre-insert count.
func (s *RegistrationService) Submit(ctx context.Context, req SubmitRequest) (*RegistrationDetail, error) {
	if req.WorkshopTrack == "" {
		req.WorkshopTrack = models.WorkshopNone
	}
	if req.CompetitionTrack == "" {
		req.CompetitionTrack = models.CompetitionNone
	}
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	reg := &models.Registration{
		TeamName:         strings.TrimSpace(req.TeamName),
		College:          strings.TrimSpace(req.College),
		WorkshopTrack:    req.WorkshopTrack,
		CompetitionTrack: req.CompetitionTrack,
		TeamSize:         len(req.Members),
		Status:           models.StatusPending,
		AmountPaid:       req.AmountPaid,
		DirectJoin:       req.DirectJoin,
	}
	tracks := reg.Tracks()
	if len(tracks) == 0 {
		return nil, invalid("workshop_track", "choose a workshop or a competition")
	}

	unlock := s.locks.Lock("capacity")
	defer unlock()

	stats, err := s.slots.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.EventClosed {
		logger.Warn().Int("total", stats.TotalParticipants).Msg("Submit: event is full")
		return nil, &CapacityError{Track: "event", Used: stats.TotalParticipants, Max: stats.MaxParticipants}
	}
	if req.DirectJoin && !stats.DirectJoinAvailable {
		return nil, precondition(RuleDirectJoinUnavailable, nil,
			"direct join opens after %d participants", stats.DirectJoinThreshold)
	}
	for _, t := range tracks {
		slot, ok := stats.Track(t)
		if ok && slot.Closed {
			logger.Warn().Str("track", string(t)).Int("used", slot.Used).Int("max", slot.Max).Msg("Submit: track is closed")
			return nil, &CapacityError{Track: string(t), Used: slot.Used, Max: slot.Max}
		}
	}

	now := s.now()
	reg.CreatedAt, reg.UpdatedAt = now, now
	if req.DirectJoin {
		reg.Status = models.StatusPendingReview
	}
	if err := s.repo.InsertRegistration(ctx, reg); err != nil {
		logger.Error().Err(err).Str("team", reg.TeamName).Msg("Submit: insert registration failed")
		return nil, err
	}

	members := make([]*models.Participant, 0, len(req.Members))
	for _, m := range req.Members {
		accommodation := models.AccommodationNotRequested
		if m.Accommodation {
			accommodation = models.AccommodationRequested
		}
		members = append(members, &models.Participant{
			RegistrationID:      reg.ID,
			Name:                strings.TrimSpace(m.Name),
			Email:               strings.ToLower(strings.TrimSpace(m.Email)),
			Phone:               strings.TrimSpace(m.Phone),
			Gender:              m.Gender,
			FoodPreference:      m.FoodPreference,
			Role:                models.RoleParticipant,
			AccommodationStatus: accommodation,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}
	if err := s.repo.InsertParticipants(ctx, members); err != nil {
		logger.Error().Err(err).Str("registration_id", reg.ID.Hex()).Msg("Submit: insert team members failed")
		s.rollback(ctx, reg.ID)
		return nil, err
	}

	for _, p := range members {
		if _, err := s.qr.Generate(ctx, p); err != nil {
			// the badge can be regenerated from the participant endpoint
			logger.Warn().Err(err).Str("participant_id", p.ID.Hex()).Msg("Submit: QR generation failed")
		}
	}

	detail := &RegistrationDetail{Registration: *reg, Members: make([]models.Participant, 0, len(members))}
	for _, p := range members {
		detail.Members = append(detail.Members, *p)
	}

	logger.Info().Str("registration_id", reg.ID.Hex()).Str("team", reg.TeamName).
		Int("team_size", reg.TeamSize).Msg("Submit: registration accepted")
	s.publish(ctx, EventRegistrationSubmitted, map[string]interface{}{
		"registration_id":   reg.ID.Hex(),
		"team_name":         reg.TeamName,
		"workshop_track":    reg.WorkshopTrack,
		"competition_track": reg.CompetitionTrack,
		"team_size":         reg.TeamSize,
		"status":            reg.Status,
	})
	return detail, nil
}

// rollback removes a half-written registration so its team size stops
// counting against capacity. It runs even if the request was cancelled.
func (s *RegistrationService) rollback(ctx context.Context, id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.DeleteRegistration(ctx, id); err != nil {
		logger.Error().Err(err).Str("registration_id", id.Hex()).
			Msg("Submit: rollback failed, registration still counts against capacity")
		return
	}
	logger.Warn().Str("registration_id", id.Hex()).Msg("Submit: registration rolled back")
}

// Get loads a registration and its members.
func (s *RegistrationService) Get(ctx context.Context, id string) (*RegistrationDetail, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, invalid("id", "%q is not a valid id", id)
	}
	reg, err := s.repo.GetRegistration(ctx, oid)
	if err != nil {
		return nil, notFound(err, "registration", id)
	}
	members, err := s.repo.ListParticipants(ctx, oid)
	if err != nil {
		return nil, err
	}
	return &RegistrationDetail{Registration: *reg, Members: members}, nil
}

// List returns registrations, optionally filtered by status.
func (s *RegistrationService) List(ctx context.Context, status string) ([]models.Registration, error) {
	var st models.RegistrationStatus
	if status != "" {
		parsed, err := models.ParseRegistrationStatus(status)
		if err != nil {
			return nil, invalid("status", "%v", err)
		}
		st = parsed
	}
	return s.repo.ListRegistrations(ctx, st)
}

// AdvanceStatus moves a registration forward; it never moves backwards.
func (s *RegistrationService) AdvanceStatus(ctx context.Context, id, status string) (*models.Registration, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, invalid("id", "%q is not a valid id", id)
	}
	next, err := models.ParseRegistrationStatus(status)
	if err != nil {
		return nil, invalid("status", "%v", err)
	}
	reg, err := s.repo.GetRegistration(ctx, oid)
	if err != nil {
		return nil, notFound(err, "registration", id)
	}

	details := map[string]string{"from": string(reg.Status), "to": string(next)}
	if !reg.Status.CanAdvanceTo(next) {
		return nil, precondition(RuleStatusRegression, details,
			"registration cannot move from %s to %s", reg.Status, next)
	}
	if err := s.repo.UpdateRegistrationStatus(ctx, oid, reg.Status, next); err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return nil, precondition(RuleStatusChanged, details,
				"registration changed while updating, reload and retry")
		}
		return nil, err
	}

	prev := reg.Status
	reg.Status = next
	reg.UpdatedAt = s.now()
	logger.Info().Str("registration_id", id).Str("from", string(prev)).Str("to", string(next)).
		Msg("AdvanceStatus: registration status changed")
	s.publish(ctx, EventRegistrationStatusChanged, map[string]interface{}{
		"registration_id": id,
		"from":            prev,
		"to":              next,
	})
	return reg, nil
}

func (s *RegistrationService) publish(ctx context.Context, key string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, payload); err != nil {
		logger.Warn().Err(err).Str("routing_key", key).Msg("publish: domain event dropped")
	}
}
