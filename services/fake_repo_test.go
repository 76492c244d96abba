// file: services/fake_repo_test.go
package services

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"conference-desk/models"
	"conference-desk/store"
)

// fakeRepo is an in-memory store.Repository with the same conditional-update
// and unique-index behaviour as the Mongo implementation.
type fakeRepo struct {
	mu            sync.Mutex
	registrations map[primitive.ObjectID]*models.Registration
	participants  map[primitive.ObjectID]*models.Participant
	attendance    []*models.AttendanceRecord

	// failWith, when set, is returned by every read and write.
	failWith error
	// failOn fails a single operation by method name.
	failOn map[string]error
	// conflictOnce makes the next TransitionAccommodation lose a race to
	// conflictTo before applying the caller's transition.
	conflictOnce bool
	conflictTo   models.AccommodationStatus
}

var _ store.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		registrations: make(map[primitive.ObjectID]*models.Registration),
		participants:  make(map[primitive.ObjectID]*models.Participant),
		failOn:        make(map[string]error),
	}
}

// failing returns the error configured for op; callers hold f.mu.
func (f *fakeRepo) failing(op string) error {
	if f.failWith != nil {
		return f.failWith
	}
	return f.failOn[op]
}

// seedTeam stores a registration with n members and returns both.
func (f *fakeRepo) seedTeam(reg models.Registration, n int, acc models.AccommodationStatus) (*models.Registration, []*models.Participant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg.ID = primitive.NewObjectID()
	reg.TeamSize = n
	f.registrations[reg.ID] = &reg
	members := make([]*models.Participant, 0, n)
	for i := 0; i < n; i++ {
		p := &models.Participant{
			ID:                  primitive.NewObjectID(),
			RegistrationID:      reg.ID,
			Name:                "Member " + string(rune('A'+i)),
			Email:               "member@example.com",
			Role:                models.RoleParticipant,
			AccommodationStatus: acc,
		}
		f.participants[p.ID] = p
		members = append(members, p)
	}
	return &reg, members
}

func (f *fakeRepo) InsertRegistration(_ context.Context, r *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	r.ID = primitive.NewObjectID()
	cp := *r
	f.registrations[r.ID] = &cp
	return nil
}

func (f *fakeRepo) GetRegistration(_ context.Context, id primitive.ObjectID) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	r, ok := f.registrations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) ListRegistrations(_ context.Context, status models.RegistrationStatus) ([]models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []models.Registration{}
	for _, r := range f.registrations {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateRegistrationStatus(_ context.Context, id primitive.ObjectID, from, to models.RegistrationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	r, ok := f.registrations[id]
	if !ok || r.Status != from {
		return store.ErrStateConflict
	}
	r.Status = to
	return nil
}

func (f *fakeRepo) DeleteRegistration(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing("DeleteRegistration"); err != nil {
		return err
	}
	for pid, p := range f.participants {
		if p.RegistrationID == id {
			delete(f.participants, pid)
		}
	}
	delete(f.registrations, id)
	return nil
}

func (f *fakeRepo) SumTeamSize(_ context.Context, field, value string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	sum := 0
	for _, r := range f.registrations {
		switch field {
		case "workshop_track":
			if string(r.WorkshopTrack) == value {
				sum += r.TeamSize
			}
		case "competition_track":
			if string(r.CompetitionTrack) == value {
				sum += r.TeamSize
			}
		}
	}
	return sum, nil
}

func (f *fakeRepo) InsertParticipants(_ context.Context, ps []*models.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing("InsertParticipants"); err != nil {
		return err
	}
	for _, p := range ps {
		p.ID = primitive.NewObjectID()
		cp := *p
		f.participants[p.ID] = &cp
	}
	return nil
}

func (f *fakeRepo) GetParticipant(_ context.Context, id primitive.ObjectID) (*models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.participants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListParticipants(_ context.Context, registrationID primitive.ObjectID) ([]models.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []models.Participant{}
	for _, p := range f.participants {
		if p.RegistrationID == registrationID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountParticipants(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	return len(f.participants), nil
}

func (f *fakeRepo) SaveParticipantQR(_ context.Context, id primitive.ObjectID, payload, image string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	p, ok := f.participants[id]
	if !ok {
		return store.ErrNotFound
	}
	p.QRPayload, p.QRImage = payload, image
	return nil
}

func (f *fakeRepo) MarkPresent(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	p, ok := f.participants[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Present = true
	return nil
}

func (f *fakeRepo) TransitionAccommodation(_ context.Context, id primitive.ObjectID, from, to models.AccommodationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	p, ok := f.participants[id]
	if !ok {
		return store.ErrNotFound
	}
	if f.conflictOnce {
		f.conflictOnce = false
		p.AccommodationStatus = f.conflictTo
	}
	if p.AccommodationStatus != from {
		return store.ErrStateConflict
	}
	p.AccommodationStatus = to
	return nil
}

func (f *fakeRepo) FindAttendance(_ context.Context, kind models.ActionKind, participantID primitive.ObjectID, detail, date string) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, rec := range f.attendance {
		if rec.Kind == kind && rec.ParticipantID == participantID && rec.Detail == detail && rec.Date == date {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRepo) InsertAttendance(_ context.Context, rec *models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failing("InsertAttendance"); err != nil {
		return err
	}
	if rec.Kind.Collection() != "accommodation_logs" {
		for _, r := range f.attendance {
			if r.Kind == rec.Kind && r.ParticipantID == rec.ParticipantID && r.Detail == rec.Detail && r.Date == rec.Date {
				return store.ErrDuplicate
			}
		}
	}
	rec.ID = primitive.NewObjectID()
	cp := *rec
	f.attendance = append(f.attendance, &cp)
	return nil
}

func (f *fakeRepo) CountAttendance(_ context.Context, date string) (map[models.ActionKind]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make(map[models.ActionKind]int, len(models.AllActionKinds))
	for _, k := range models.AllActionKinds {
		out[k] = 0
	}
	for _, r := range f.attendance {
		if r.Date == date {
			out[r.Kind]++
		}
	}
	return out, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	failed bool
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	if p.failed {
		return store.ErrUnavailable
	}
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}
