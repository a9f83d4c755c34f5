package repository

import (
	"context"

	"github.com/iliyamo/course-enrollment/internal/model"
)

// InsertResult, UpdateResult and DeleteResult are returned verbatim to
// clients, so their JSON shape follows the document store's acknowledgements.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// UserStore owns the users collection.
type UserStore interface {
	// Create inserts u unless a user with the same email exists; created
	// reports which happened.
	Create(ctx context.Context, u model.User) (res InsertResult, created bool, err error)
	List(ctx context.Context) ([]model.User, error)
	// RoleByEmail resolves the stored role.  A missing user is RoleUnset
	// with a nil error.
	RoleByEmail(ctx context.Context, email string) (model.Role, error)
	SetRole(ctx context.Context, id string, role model.Role) (UpdateResult, error)
}

// ClassStore owns the classes collection.
type ClassStore interface {
	Create(ctx context.Context, c model.Class) (InsertResult, error)
	List(ctx context.Context) ([]model.Class, error)
	ListByStatus(ctx context.Context, status model.ClassStatus) ([]model.Class, error)
	SetStatus(ctx context.Context, id string, status model.ClassStatus) (UpdateResult, error)
}

// CartStore owns the selectedClasses collection.
type CartStore interface {
	Add(ctx context.Context, sc model.SelectedClass) (InsertResult, error)
	ListByEmail(ctx context.Context, email string) ([]model.SelectedClass, error)
	// DeleteOwned removes the entry only when it belongs to email.  An
	// entry owned by someone else yields ErrForbidden; a missing entry
	// yields a zero DeletedCount.
	DeleteOwned(ctx context.Context, id, email string) (DeleteResult, error)
}

// Stores bundles one implementation of every store with the handle that
// owns their connection.
type Stores struct {
	Users   UserStore
	Classes ClassStore
	Cart    CartStore
	closer  func(context.Context) error
}

// NewStores wires a set of stores to the function that releases their
// shared connection.
func NewStores(u UserStore, c ClassStore, s CartStore, closer func(context.Context) error) *Stores {
	return &Stores{Users: u, Classes: c, Cart: s, closer: closer}
}

// Close releases the underlying connection.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}
