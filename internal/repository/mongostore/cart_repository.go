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

type selectedDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ClassID        string             `bson:"classId"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name,omitempty"`
	Image          string             `bson:"image,omitempty"`
	InstructorName string             `bson:"instructorName,omitempty"`
	Price          float64            `bson:"price"`
}

func (d selectedDoc) model() model.SelectedClass {
	return model.SelectedClass{
		ID:             hexID(d.ID),
		ClassID:        d.ClassID,
		Email:          d.Email,
		Name:           d.Name,
		Image:          d.Image,
		InstructorName: d.InstructorName,
		Price:          d.Price,
	}
}

// CartRepo persists selected-class entries in the selectedClasses collection.
type CartRepo struct{ coll *mongo.Collection }

func NewCartRepo(db *mongo.Database) *CartRepo {
	return &CartRepo{coll: db.Collection(selectedCollection)}
}

func (r *CartRepo) Add(ctx context.Context, sc model.SelectedClass) (repository.InsertResult, error) {
	doc := selectedDoc{
		ID:             primitive.NewObjectID(),
		ClassID:        sc.ClassID,
		Email:          sc.Email,
		Name:           sc.Name,
		Image:          sc.Image,
		InstructorName: sc.InstructorName,
		Price:          sc.Price,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return repository.InsertResult{}, fmt.Errorf("insert selected class: %w", err)
	}
	return repository.InsertResult{Acknowledged: true, InsertedID: doc.ID.Hex()}, nil
}

func (r *CartRepo) ListByEmail(ctx context.Context, email string) ([]model.SelectedClass, error) {
	cur, err := r.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("list selected classes: %w", err)
	}
	defer cur.Close(ctx)

	var docs []selectedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode selected classes: %w", err)
	}
	out := make([]model.SelectedClass, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// DeleteOwned deletes by id and owner in one call; the existence lookup only
// runs when nothing matched, to tell a foreign entry from a missing one.
func (r *CartRepo) DeleteOwned(ctx context.Context, id, email string) (repository.DeleteResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return repository.DeleteResult{}, err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "email": email})
	if err != nil {
		return repository.DeleteResult{}, fmt.Errorf("delete selected class: %w", err)
	}
	if res.DeletedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return repository.DeleteResult{}, fmt.Errorf("look up selected class: %w", err)
		}
		if n > 0 {
			return repository.DeleteResult{}, repository.ErrForbidden
		}
	}
	return repository.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
