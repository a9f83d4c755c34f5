package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/repository"
)

const classColumns = "id,name,image,instructor_name,instructor_email,available_seats,price,status,feedback"

// ClassRepo mirrors the 'classes' table.
type ClassRepo struct{ DB *sql.DB }

func NewClassRepo(db *sql.DB) *ClassRepo { return &ClassRepo{DB: db} }

func (r *ClassRepo) Create(ctx context.Context, c model.Class) (repository.InsertResult, error) {
	var feedback sql.NullString
	if c.Feedback != "" {
		feedback = sql.NullString{String: c.Feedback, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO classes (name,image,instructor_name,instructor_email,available_seats,price,status,feedback) VALUES (?,?,?,?,?,?,?,?)",
		c.Name, c.Image, c.InstructorName, c.InstructorEmail, c.AvailableSeats, c.Price, string(c.Status), feedback)
	if err != nil {
		return repository.InsertResult{}, fmt.Errorf("insert class: %w", err)
	}
	return insertResult(res)
}

func (r *ClassRepo) List(ctx context.Context) ([]model.Class, error) {
	return r.query(ctx, "SELECT "+classColumns+" FROM classes ORDER BY id")
}

func (r *ClassRepo) ListByStatus(ctx context.Context, status model.ClassStatus) ([]model.Class, error) {
	return r.query(ctx, "SELECT "+classColumns+" FROM classes WHERE status=? ORDER BY id", string(status))
}

func (r *ClassRepo) SetStatus(ctx context.Context, id string, status model.ClassStatus) (repository.UpdateResult, error) {
	cid, err := parseID(id)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	res, err := r.DB.ExecContext(ctx, "UPDATE classes SET status=? WHERE id=?", string(status), cid)
	if err != nil {
		return repository.UpdateResult{}, fmt.Errorf("update class status: %w", err)
	}
	return updateResult(res)
}

func (r *ClassRepo) query(ctx context.Context, q string, args ...any) ([]model.Class, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	out := []model.Class{}
	for rows.Next() {
		var (
			id       uint64
			c        model.Class
			status   string
			feedback sql.NullString
		)
		if err := rows.Scan(&id, &c.Name, &c.Image, &c.InstructorName, &c.InstructorEmail,
			&c.AvailableSeats, &c.Price, &status, &feedback); err != nil {
			return nil, err
		}
		c.ID = formatID(id)
		c.Status = model.ClassStatus(status)
		c.Feedback = feedback.String
		out = append(out, c)
	}
	return out, rows.Err()
}
