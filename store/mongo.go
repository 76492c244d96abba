// File: store/mongo.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"conference-desk/logger"
	"conference-desk/models"
)

const (
	registrationsColl = "registrations"
	participantsColl  = "team_members"
)

// Mongo implements Repository on a MongoDB database.
type Mongo struct {
	db  *mongo.Database
	now func() time.Time
}

// ensure Mongo satisfies Repository
var _ Repository = (*Mongo)(nil)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string, opts ...*options.ClientOptions) (*mongo.Client, *Mongo, error) {
	clientOpts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, opts...)
	client, err := mongo.Connect(ctx, clientOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info().Str("database", database).Msg("Connect: MongoDB connected")
	return client, New(client.Database(database)), nil
}

// New wraps an existing database handle.
func New(db *mongo.Database) *Mongo {
	return &Mongo{db: db, now: time.Now}
}

// EnsureIndexes creates the lookup indexes and the unique per-day attendance indexes.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		registrationsColl: {
			{Keys: bson.D{{Key: "workshop_track", Value: 1}}},
			{Keys: bson.D{{Key: "competition_track", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		participantsColl: {
			{Keys: bson.D{{Key: "registration_id", Value: 1}}},
		},
		models.ActionAccommodationCheckin.Collection(): {
			{Keys: bson.D{{Key: "participant_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
	for _, kind := range []models.ActionKind{models.ActionMeal, models.ActionWorkshopAttendance, models.ActionCompetitionCheckin} {
		specs[kind.Collection()] = []mongo.IndexModel{{
			Keys:    bson.D{{Key: "participant_id", Value: 1}, {Key: "detail", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("one_per_day"),
		}}
	}

	for coll, idx := range specs {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return wrap("create indexes on "+coll, err)
		}
	}
	return nil
}

// wrap classifies a driver error into the package sentinels.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// ------------------- registrations -------------------

func (m *Mongo) InsertRegistration(ctx context.Context, r *models.Registration) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := m.db.Collection(registrationsColl).InsertOne(ctx, r)
	return wrap("insert registration", err)
}

func (m *Mongo) GetRegistration(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	var r models.Registration
	err := m.db.Collection(registrationsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err != nil {
		return nil, wrap("get registration", err)
	}
	return &r, nil
}

func (m *Mongo) ListRegistrations(ctx context.Context, status models.RegistrationStatus) ([]models.Registration, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cur, err := m.db.Collection(registrationsColl).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, wrap("list registrations", err)
	}
	out := []models.Registration{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrap("decode registrations", err)
	}
	return out, nil
}

// UpdateRegistrationStatus moves a registration from one status to another only
// if it is still in the from state.
func (m *Mongo) UpdateRegistrationStatus(ctx context.Context, id primitive.ObjectID, from, to models.RegistrationStatus) error {
	res, err := m.db.Collection(registrationsColl).UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": m.now()}},
	)
	if err != nil {
		return wrap("update registration status", err)
	}
	if res.MatchedCount == 0 {
		return ErrStateConflict
	}
	return nil
}

// DeleteRegistration removes a registration and any team members already
// stored under it. Missing documents are not an error.
func (m *Mongo) DeleteRegistration(ctx context.Context, id primitive.ObjectID) error {
	if _, err := m.db.Collection(participantsColl).DeleteMany(ctx, bson.M{"registration_id": id}); err != nil {
		return wrap("delete team members", err)
	}
	_, err := m.db.Collection(registrationsColl).DeleteOne(ctx, bson.M{"_id": id})
	return wrap("delete registration", err)
}

// teamSizePipeline sums team_size over registrations whose field equals value.
func teamSizePipeline(field, value string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: field, Value: value}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$team_size"}}},
		}}},
	}
}

// SumTeamSize returns 0 with a nil error when nothing matches; any driver
// failure comes back wrapped in ErrUnavailable.
func (m *Mongo) SumTeamSize(ctx context.Context, field, value string) (int, error) {
	if field != "workshop_track" && field != "competition_track" {
		return 0, fmt.Errorf("sum team size: unsupported field %q", field)
	}
	cur, err := m.db.Collection(registrationsColl).Aggregate(ctx, teamSizePipeline(field, value))
	if err != nil {
		return 0, wrap("sum team size by "+field, err)
	}
	var rows []struct {
		Total int `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, wrap("decode team size sum", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// ------------------- participants -------------------

func (m *Mongo) InsertParticipants(ctx context.Context, ps []*models.Participant) error {
	if len(ps) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(ps))
	for _, p := range ps {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		docs = append(docs, p)
	}
	_, err := m.db.Collection(participantsColl).InsertMany(ctx, docs)
	return wrap("insert participants", err)
}

func (m *Mongo) GetParticipant(ctx context.Context, id primitive.ObjectID) (*models.Participant, error) {
	var p models.Participant
	err := m.db.Collection(participantsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		return nil, wrap("get participant", err)
	}
	return &p, nil
}

func (m *Mongo) ListParticipants(ctx context.Context, registrationID primitive.ObjectID) ([]models.Participant, error) {
	cur, err := m.db.Collection(participantsColl).Find(ctx, bson.M{"registration_id": registrationID})
	if err != nil {
		return nil, wrap("list participants", err)
	}
	out := []models.Participant{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrap("decode participants", err)
	}
	return out, nil
}

func (m *Mongo) CountParticipants(ctx context.Context) (int, error) {
	n, err := m.db.Collection(participantsColl).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, wrap("count participants", err)
	}
	return int(n), nil
}

func (m *Mongo) SaveParticipantQR(ctx context.Context, id primitive.ObjectID, payload, image string) error {
	return m.updateParticipant(ctx, "save participant qr", bson.M{"_id": id},
		bson.M{"qr_payload": payload, "qr_image": image})
}

func (m *Mongo) MarkPresent(ctx context.Context, id primitive.ObjectID) error {
	return m.updateParticipant(ctx, "mark participant present", bson.M{"_id": id},
		bson.M{"present": true})
}

// TransitionAccommodation is a compare-and-set on accommodation_status.
func (m *Mongo) TransitionAccommodation(ctx context.Context, id primitive.ObjectID, from, to models.AccommodationStatus) error {
	err := m.updateParticipant(ctx, "transition accommodation",
		bson.M{"_id": id, "accommodation_status": from},
		bson.M{"accommodation_status": to})
	if errors.Is(err, ErrNotFound) {
		return ErrStateConflict
	}
	return err
}

func (m *Mongo) updateParticipant(ctx context.Context, op string, filter, set bson.M) error {
	set["updated_at"] = m.now()
	res, err := m.db.Collection(participantsColl).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return wrap(op, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ------------------- attendance -------------------

func attendanceFilter(participantID primitive.ObjectID, detail, date string) bson.M {
	return bson.M{"participant_id": participantID, "detail": detail, "date": date}
}

func (m *Mongo) FindAttendance(ctx context.Context, kind models.ActionKind, participantID primitive.ObjectID, detail, date string) (*models.AttendanceRecord, error) {
	filter := attendanceFilter(participantID, detail, date)
	filter["kind"] = kind
	var rec models.AttendanceRecord
	if err := m.db.Collection(kind.Collection()).FindOne(ctx, filter).Decode(&rec); err != nil {
		return nil, wrap("find attendance", err)
	}
	return &rec, nil
}

func (m *Mongo) InsertAttendance(ctx context.Context, rec *models.AttendanceRecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	_, err := m.db.Collection(rec.Kind.Collection()).InsertOne(ctx, rec)
	return wrap("insert attendance", err)
}

// CountAttendance groups one day's records by kind across every log collection.
func (m *Mongo) CountAttendance(ctx context.Context, date string) (map[models.ActionKind]int, error) {
	out := make(map[models.ActionKind]int, len(models.AllActionKinds))
	for _, kind := range models.AllActionKinds {
		out[kind] = 0
	}
	seen := map[string]bool{}
	for _, kind := range models.AllActionKinds {
		coll := kind.Collection()
		if seen[coll] {
			continue
		}
		seen[coll] = true

		cur, err := m.db.Collection(coll).Aggregate(ctx, mongo.Pipeline{
			{{Key: "$match", Value: bson.D{{Key: "date", Value: date}}}},
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$kind"},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
		})
		if err != nil {
			return nil, wrap("count attendance in "+coll, err)
		}
		var rows []struct {
			Kind  models.ActionKind `bson:"_id"`
			Count int               `bson:"count"`
		}
		if err := cur.All(ctx, &rows); err != nil {
			return nil, wrap("decode attendance counts", err)
		}
		for _, r := range rows {
			out[r.Kind] += r.Count
		}
	}
	return out, nil
}
