package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/repository"
)

type userDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name,omitempty"`
	Email string             `bson:"email"`
	Photo string             `bson:"photo,omitempty"`
	Role  string             `bson:"role,omitempty"`
}

// model keeps the stored role string verbatim; authorization reads it
// through RoleByEmail.
func (d userDoc) model() model.User {
	return model.User{ID: hexID(d.ID), Name: d.Name, Email: d.Email, Photo: d.Photo, Role: model.Role(d.Role)}
}

// UserRepo persists users in the users collection.
type UserRepo struct{ coll *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(usersCollection)}
}

// Create inserts u unless the email is already registered.
func (r *UserRepo) Create(ctx context.Context, u model.User) (repository.InsertResult, bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"email": u.Email}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case err == nil:
		return repository.InsertResult{}, false, nil
	case !isNoDocuments(err):
		return repository.InsertResult{}, false, fmt.Errorf("find user: %w", err)
	}

	doc := userDoc{
		ID:    primitive.NewObjectID(),
		Name:  u.Name,
		Email: u.Email,
		Photo: u.Photo,
		Role:  string(u.Role),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		// Lost a race against a concurrent registration of the same email.
		if mongo.IsDuplicateKeyError(err) {
			return repository.InsertResult{}, false, nil
		}
		return repository.InsertResult{}, false, fmt.Errorf("insert user: %w", err)
	}
	return repository.InsertResult{Acknowledged: true, InsertedID: doc.ID.Hex()}, true, nil
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]model.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// RoleByEmail reads the role on every call; role changes are visible to the
// next request.
func (r *UserRepo) RoleByEmail(ctx context.Context, email string) (model.Role, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(bson.M{"role": 1, "email": 1})).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return model.RoleUnset, nil
		}
		return model.RoleUnset, fmt.Errorf("find role: %w", err)
	}
	return model.RoleFromStore(doc.Role), nil
}

func (r *UserRepo) SetRole(ctx context.Context, id string, role model.Role) (repository.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": string(role)}})
	if err != nil {
		return repository.UpdateResult{}, fmt.Errorf("update role: %w", err)
	}
	return updateResult(res), nil
}
