package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/repository"
)

// UserRepo mirrors the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts the user unless the email exists; the unique key settles
// concurrent registrations.
func (r *UserRepo) Create(ctx context.Context, u model.User) (repository.InsertResult, bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email=? LIMIT 1", u.Email).Scan(&one)
	switch {
	case err == nil:
		return repository.InsertResult{}, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return repository.InsertResult{}, false, fmt.Errorf("find user: %w", err)
	}

	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, photo, role) VALUES (?,?,?,?)",
		u.Email, u.Name, u.Photo, string(u.Role))
	if err != nil {
		if isDuplicate(err) {
			return repository.InsertResult{}, false, nil
		}
		return repository.InsertResult{}, false, fmt.Errorf("insert user: %w", err)
	}
	out, err := insertResult(res)
	if err != nil {
		return repository.InsertResult{}, false, err
	}
	return out, true, nil
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,email,name,photo,role FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var (
			id   uint64
			u    model.User
			role string
		)
		if err := rows.Scan(&id, &u.Email, &u.Name, &u.Photo, &role); err != nil {
			return nil, err
		}
		u.ID = formatID(id)
		u.Role = model.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

// RoleByEmail returns RoleUnset for unknown emails.
func (r *UserRepo) RoleByEmail(ctx context.Context, email string) (model.Role, error) {
	var role string
	err := r.DB.QueryRowContext(ctx, "SELECT role FROM users WHERE email=? LIMIT 1", email).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RoleUnset, nil
		}
		return model.RoleUnset, fmt.Errorf("find role: %w", err)
	}
	return model.RoleFromStore(role), nil
}

func (r *UserRepo) SetRole(ctx context.Context, id string, role model.Role) (repository.UpdateResult, error) {
	uid, err := parseID(id)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", string(role), uid)
	if err != nil {
		return repository.UpdateResult{}, fmt.Errorf("update role: %w", err)
	}
	return updateResult(res)
}
