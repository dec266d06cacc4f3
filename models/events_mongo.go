package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// eventDoc is the stored shape. Registrations keep the "registeredUsers" field
// name so existing collections stay readable.
type eventDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Description     string             `bson:"description"`
	Date            time.Time          `bson:"date"`
	Location        string             `bson:"location"`
	Capacity        int                `bson:"capacity"`
	Image           string             `bson:"image"`
	RegisteredUsers []Registration     `bson:"registeredUsers"`
}

func (d eventDoc) toEvent() Event {
	regs := d.RegisteredUsers
	if regs == nil {
		regs = []Registration{}
	}
	return Event{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Date:          d.Date,
		Location:      d.Location,
		Capacity:      d.Capacity,
		Image:         d.Image,
		Registrations: regs,
	}
}

func docFromEvent(e *Event) eventDoc {
	regs := e.Registrations
	if regs == nil {
		regs = []Registration{}
	}
	return eventDoc{
		Title:           e.Title,
		Description:     e.Description,
		Date:            e.Date,
		Location:        e.Location,
		Capacity:        e.Capacity,
		Image:           e.Image,
		RegisteredUsers: regs,
	}
}

type mongoEventRepo struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMongoEventRepository(col *mongo.Collection, timeout time.Duration) EventRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &mongoEventRepo{col: col, timeout: timeout}
}

// A malformed id can never match a document, so it reads as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func (r *mongoEventRepo) GetAll(ctx context.Context) ([]Event, error) {
	const op = "mongo.GetAll"
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer cur.Close(ctx)

	out := []Event{}
	for cur.Next(ctx) {
		var d eventDoc
		if err := cur.Decode(&d); err != nil {
			return nil, storeErr(op, err)
		}
		out = append(out, d.toEvent())
	}
	return out, storeErr(op, cur.Err())
}

func (r *mongoEventRepo) GetByID(ctx context.Context, id string) (Event, error) {
	const op = "mongo.GetByID"
	oid, err := objectID(id)
	if err != nil {
		return Event{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var d eventDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, ErrNotFound
		}
		return Event{}, storeErr(op, err)
	}
	return d.toEvent(), nil
}

func (r *mongoEventRepo) Create(ctx context.Context, e *Event) error {
	const op = "mongo.Create"
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	d := docFromEvent(e)
	d.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, d); err != nil {
		return storeErr(op, err)
	}
	*e = d.toEvent()
	return nil
}

func (r *mongoEventRepo) Save(ctx context.Context, e *Event) error {
	const op = "mongo.Save"
	oid, err := objectID(e.ID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	d := docFromEvent(e)
	d.ID = oid
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": oid}, d)
	if err != nil {
		return storeErr(op, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepo) Delete(ctx context.Context, id string) (Event, error) {
	const op = "mongo.Delete"
	oid, err := objectID(id)
	if err != nil {
		return Event{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var d eventDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, ErrNotFound
		}
		return Event{}, storeErr(op, err)
	}
	return d.toEvent(), nil
}

// AppendRegistration matches the document only while the registeredUsers
// array is shorter than capacity, so the check and the $push are one write.
func (r *mongoEventRepo) AppendRegistration(ctx context.Context, id string, reg Registration) (Event, error) {
	const op = "mongo.AppendRegistration"
	oid, err := objectID(id)
	if err != nil {
		return Event{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{
		"_id": oid,
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": bson.M{"$ifNull": bson.A{"$registeredUsers", bson.A{}}}},
			"$capacity",
		}},
	}
	update := bson.M{"$push": bson.M{"registeredUsers": reg}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d eventDoc
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d)
	if err == nil {
		return d.toEvent(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return Event{}, storeErr(op, err)
	}

	// no match: either the event is gone or it is full
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return Event{}, storeErr(op, err)
	}
	if n == 0 {
		return Event{}, ErrNotFound
	}
	return Event{}, ErrCapacityExceeded
}

func (r *mongoEventRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return storeErr("mongo.Ping", r.col.Database().Client().Ping(ctx, nil))
}
