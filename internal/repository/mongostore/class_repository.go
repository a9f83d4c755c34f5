package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/repository"
)

type classDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Image           string             `bson:"image,omitempty"`
	InstructorName  string             `bson:"instructorName,omitempty"`
	InstructorEmail string             `bson:"instructorEmail,omitempty"`
	AvailableSeats  int                `bson:"availableSeats"`
	Price           float64            `bson:"price"`
	Status          string             `bson:"status"`
	Feedback        string             `bson:"feedback,omitempty"`
}

func (d classDoc) model() model.Class {
	return model.Class{
		ID:              hexID(d.ID),
		Name:            d.Name,
		Image:           d.Image,
		InstructorName:  d.InstructorName,
		InstructorEmail: d.InstructorEmail,
		AvailableSeats:  d.AvailableSeats,
		Price:           d.Price,
		Status:          model.ClassStatus(d.Status),
		Feedback:        d.Feedback,
	}
}

// ClassRepo persists class listings in the classes collection.
type ClassRepo struct{ coll *mongo.Collection }

func NewClassRepo(db *mongo.Database) *ClassRepo {
	return &ClassRepo{coll: db.Collection(classesCollection)}
}

func (r *ClassRepo) Create(ctx context.Context, c model.Class) (repository.InsertResult, error) {
	doc := classDoc{
		ID:              primitive.NewObjectID(),
		Name:            c.Name,
		Image:           c.Image,
		InstructorName:  c.InstructorName,
		InstructorEmail: c.InstructorEmail,
		AvailableSeats:  c.AvailableSeats,
		Price:           c.Price,
		Status:          string(c.Status),
		Feedback:        c.Feedback,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return repository.InsertResult{}, fmt.Errorf("insert class: %w", err)
	}
	return repository.InsertResult{Acknowledged: true, InsertedID: doc.ID.Hex()}, nil
}

func (r *ClassRepo) List(ctx context.Context) ([]model.Class, error) {
	return r.find(ctx, bson.M{})
}

func (r *ClassRepo) ListByStatus(ctx context.Context, status model.ClassStatus) ([]model.Class, error) {
	return r.find(ctx, bson.M{"status": string(status)})
}

func (r *ClassRepo) SetStatus(ctx context.Context, id string, status model.ClassStatus) (repository.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		return repository.UpdateResult{}, fmt.Errorf("update class status: %w", err)
	}
	return updateResult(res), nil
}

func (r *ClassRepo) find(ctx context.Context, filter bson.M) ([]model.Class, error) {
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer cur.Close(ctx)

	var docs []classDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	out := make([]model.Class, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}
