// Package services: services/checkin_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"conference-desk/logger"
	"conference-desk/models"
	"conference-desk/store"
)

const dateLayout = "2006-01-02"

// ActionRequest is a scanner asking to record an on-site action.
type ActionRequest struct {
	ParticipantID   string
	Kind            models.ActionKind
	MealType        string
	WorkshopTrack   string
	CompetitionType string
	RecordedBy      string
}

// ActionResult confirms a recorded action.
type ActionResult struct {
	ParticipantID       string                     `json:"participant_id"`
	ParticipantName     string                     `json:"participant_name"`
	Action              models.ActionKind          `json:"action"`
	Detail              string                     `json:"detail,omitempty"`
	Date                string                     `json:"date"`
	AccommodationStatus models.AccommodationStatus `json:"accommodation_status,omitempty"`
	RecordedAt          time.Time                  `json:"recorded_at"`
}

type CheckinServiceInterface interface {
	AuthorizeAction(ctx context.Context, req ActionRequest) (*ActionResult, error)
	AttendanceSummary(ctx context.Context, date string) (*AttendanceReport, error)
}

// AttendanceReport is one event day's per-action record counts.
type AttendanceReport struct {
	Date   string                    `json:"date"`
	Counts map[models.ActionKind]int `json:"counts"`
}

// CheckinService checks per-action preconditions and appends attendance records.
type CheckinService struct {
	repo   store.Repository
	events EventPublisher
	loc    *time.Location
	locks  *keyLocker
	now    func() time.Time
}

// ensure CheckinService implements CheckinServiceInterface
var _ CheckinServiceInterface = (*CheckinService)(nil)

// NewCheckinService creates a CheckinService whose "same day" follows loc.
func NewCheckinService(repo store.Repository, events EventPublisher, loc *time.Location) *CheckinService {
	if loc == nil {
		loc = time.UTC
	}
	return &CheckinService{repo: repo, events: events, loc: loc, locks: newKeyLocker(), now: time.Now}
}

// AuthorizeAction looks up the participant, applies the precondition table for
// req.Kind and records the action on success.
func (s *CheckinService) AuthorizeAction(ctx context.Context, req ActionRequest) (*ActionResult, error) {
	id, err := primitive.ObjectIDFromHex(req.ParticipantID)
	if err != nil {
		return nil, invalid("participant_id", "%q is not a valid id", req.ParticipantID)
	}
	if _, err := models.ParseActionKind(string(req.Kind)); err != nil {
		return nil, invalid("action", "%v", err)
	}

	p, err := s.repo.GetParticipant(ctx, id)
	if err != nil {
		return nil, notFound(err, "participant", req.ParticipantID)
	}
	reg, err := s.repo.GetRegistration(ctx, p.RegistrationID)
	if err != nil {
		return nil, notFound(err, "registration", p.RegistrationID.Hex())
	}
	if !reg.Status.OnSite() {
		return nil, precondition(RuleRegistrationNotConfirmed,
			map[string]string{"status": string(reg.Status)},
			"%s's registration is %s, not confirmed", p.Name, reg.Status)
	}

	date := s.now().In(s.loc).Format(dateLayout)

	switch req.Kind {
	case models.ActionMeal:
		meal, err := models.ParseMealType(req.MealType)
		if err != nil {
			return nil, invalid("meal_type", "%v", err)
		}
		return s.recordOnce(ctx, p, req.Kind, string(meal), date, req.RecordedBy)

	case models.ActionWorkshopAttendance:
		scanned, err := models.ParseWorkshopTrack(req.WorkshopTrack)
		if err != nil || scanned == models.WorkshopNone {
			return nil, invalid("workshop_track", "a workshop track is required")
		}
		if reg.WorkshopTrack != scanned {
			return nil, precondition(RuleWorkshopMismatch,
				map[string]string{"registered": string(reg.WorkshopTrack), "scanned": string(scanned)},
				"%s is registered for workshop %s, not %s", p.Name, reg.WorkshopTrack, scanned)
		}
		return s.recordOnce(ctx, p, req.Kind, string(scanned), date, req.RecordedBy)

	case models.ActionCompetitionCheckin:
		scanned, err := models.ParseCompetitionTrack(req.CompetitionType)
		if err != nil || scanned == models.CompetitionNone {
			return nil, invalid("competition_type", "a competition type is required")
		}
		if reg.CompetitionTrack != scanned {
			return nil, precondition(RuleCompetitionMismatch,
				map[string]string{"registered": string(reg.CompetitionTrack), "scanned": string(scanned)},
				"%s is registered for competition %s, not %s", p.Name, reg.CompetitionTrack, scanned)
		}
		return s.recordOnce(ctx, p, req.Kind, string(scanned), date, req.RecordedBy)

	case models.ActionAccommodationCheckin:
		return s.transitionAccommodation(ctx, p, req.Kind, models.AccommodationRequested, models.AccommodationCheckedIn, date, req.RecordedBy)

	case models.ActionAccommodationCheckout:
		return s.transitionAccommodation(ctx, p, req.Kind, models.AccommodationCheckedIn, models.AccommodationCheckedOut, date, req.RecordedBy)
	}
	return nil, invalid("action", "unsupported action %q", req.Kind)
}

// recordOnce appends a record unless one already exists for the same
// participant, action, detail and day.
func (s *CheckinService) recordOnce(ctx context.Context, p *models.Participant, kind models.ActionKind, detail, date, by string) (*ActionResult, error) {
	unlock := s.locks.Lock(fmt.Sprintf("%s|%s|%s|%s", p.ID.Hex(), kind, detail, date))
	defer unlock()

	existing, err := s.repo.FindAttendance(ctx, kind, p.ID, detail, date)
	if err == nil {
		return nil, alreadyRecorded(p, kind, detail, date, existing.CreatedAt)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	rec := &models.AttendanceRecord{
		ParticipantID:  p.ID,
		RegistrationID: p.RegistrationID,
		Kind:           kind,
		Detail:         detail,
		Date:           date,
		RecordedBy:     by,
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertAttendance(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, alreadyRecorded(p, kind, detail, date, time.Time{})
		}
		return nil, err
	}
	s.markPresent(ctx, p)

	return s.finish(ctx, p, rec, ""), nil
}

func alreadyRecorded(p *models.Participant, kind models.ActionKind, detail, date string, at time.Time) error {
	details := map[string]string{"action": string(kind), "detail": detail, "date": date}
	if !at.IsZero() {
		details["recorded_at"] = at.UTC().Format(time.RFC3339)
	}
	return precondition(RuleAlreadyRecorded, details,
		"%s already has %s (%s) recorded for %s", p.Name, kind, detail, date)
}

// accommodationRule explains why current does not allow kind, or returns nil.
func accommodationRule(p *models.Participant, kind models.ActionKind, current models.AccommodationStatus) *PreconditionError {
	details := map[string]string{"accommodation_status": string(current)}
	if current == models.AccommodationNotRequested || current == "" {
		return precondition(RuleAccommodationNotRequested, details,
			"%s did not request accommodation", p.Name)
	}
	switch kind {
	case models.ActionAccommodationCheckin:
		switch current {
		case models.AccommodationRequested:
			return nil
		case models.AccommodationCheckedIn:
			return precondition(RuleAlreadyCheckedIn, details, "%s is already checked in", p.Name)
		case models.AccommodationCheckedOut:
			return precondition(RuleAlreadyCheckedOut, details, "%s has already checked out", p.Name)
		}
	case models.ActionAccommodationCheckout:
		switch current {
		case models.AccommodationCheckedIn:
			return nil
		case models.AccommodationRequested:
			return precondition(RuleNotCheckedIn, details, "%s has not checked in yet", p.Name)
		case models.AccommodationCheckedOut:
			return precondition(RuleAlreadyCheckedOut, details, "%s has already checked out", p.Name)
		}
	}
	return precondition(RuleAccommodationNotRequested, details,
		"accommodation status %q is not recognised", current)
}

// transitionAccommodation applies one forward step of the accommodation state
// machine as a compare-and-set at the store, then logs it.
func (s *CheckinService) transitionAccommodation(ctx context.Context, p *models.Participant, kind models.ActionKind, from, to models.AccommodationStatus, date, by string) (*ActionResult, error) {
	if rule := accommodationRule(p, kind, p.AccommodationStatus); rule != nil {
		return nil, rule
	}

	if err := s.repo.TransitionAccommodation(ctx, p.ID, from, to); err != nil {
		if !errors.Is(err, store.ErrStateConflict) {
			return nil, err
		}
		// another scanner got there first; report the state it left behind
		fresh, gerr := s.repo.GetParticipant(ctx, p.ID)
		if gerr != nil {
			return nil, notFound(gerr, "participant", p.ID.Hex())
		}
		if rule := accommodationRule(fresh, kind, fresh.AccommodationStatus); rule != nil {
			return nil, rule
		}
		return nil, err
	}

	rec := &models.AttendanceRecord{
		ParticipantID:  p.ID,
		RegistrationID: p.RegistrationID,
		Kind:           kind,
		Detail:         string(to),
		Date:           date,
		RecordedBy:     by,
		CreatedAt:      s.now(),
	}
	if err := s.repo.InsertAttendance(ctx, rec); err != nil {
		s.revertAccommodation(ctx, p, kind, to, from)
		return nil, fmt.Errorf("record %s: %w", kind, err)
	}
	p.AccommodationStatus = to
	if kind == models.ActionAccommodationCheckin {
		s.markPresent(ctx, p)
	}
	return s.finish(ctx, p, rec, to), nil
}

// revertAccommodation undoes a transition whose log entry could not be
// written, so every state change has a matching accommodation_logs record.
func (s *CheckinService) revertAccommodation(ctx context.Context, p *models.Participant, kind models.ActionKind, to, from models.AccommodationStatus) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.TransitionAccommodation(ctx, p.ID, to, from); err != nil {
		logger.Error().Err(err).Str("participant_id", p.ID.Hex()).Str("action", string(kind)).
			Msg("revertAccommodation: state changed but neither logged nor reverted")
		return
	}
	logger.Warn().Str("participant_id", p.ID.Hex()).Str("action", string(kind)).
		Msg("revertAccommodation: log append failed, state reverted")
}

func (s *CheckinService) markPresent(ctx context.Context, p *models.Participant) {
	if p.Present {
		return
	}
	if err := s.repo.MarkPresent(ctx, p.ID); err != nil {
		logger.Warn().Err(err).Str("participant_id", p.ID.Hex()).Msg("markPresent: presence flag not saved")
		return
	}
	p.Present = true
}

func (s *CheckinService) finish(ctx context.Context, p *models.Participant, rec *models.AttendanceRecord, acc models.AccommodationStatus) *ActionResult {
	res := &ActionResult{
		ParticipantID:       p.ID.Hex(),
		ParticipantName:     p.Name,
		Action:              rec.Kind,
		Detail:              rec.Detail,
		Date:                rec.Date,
		AccommodationStatus: acc,
		RecordedAt:          rec.CreatedAt,
	}
	logger.Info().Str("participant_id", res.ParticipantID).Str("action", string(res.Action)).
		Str("detail", res.Detail).Str("by", rec.RecordedBy).Msg("AuthorizeAction: action recorded")

	if s.events != nil {
		if err := s.events.Publish(ctx, EventAttendanceRecorded, res); err != nil {
			logger.Warn().Err(err).Msg("AuthorizeAction: attendance event dropped")
		}
	}
	return res
}

// AttendanceSummary counts one day's records per action; an empty date means
// today in the event timezone. The report carries the date actually counted.
func (s *CheckinService) AttendanceSummary(ctx context.Context, date string) (*AttendanceReport, error) {
	if date == "" {
		date = s.now().In(s.loc).Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, invalid("date", "expected YYYY-MM-DD, got %q", date)
	}
	counts, err := s.repo.CountAttendance(ctx, date)
	if err != nil {
		return nil, err
	}
	return &AttendanceReport{Date: date, Counts: counts}, nil
}
