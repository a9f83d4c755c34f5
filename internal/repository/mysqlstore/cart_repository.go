package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/repository"
)

// CartRepo mirrors the 'selected_classes' table.
type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

func (r *CartRepo) Add(ctx context.Context, sc model.SelectedClass) (repository.InsertResult, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO selected_classes (class_id,email,name,image,instructor_name,price) VALUES (?,?,?,?,?,?)",
		sc.ClassID, sc.Email, sc.Name, sc.Image, sc.InstructorName, sc.Price)
	if err != nil {
		return repository.InsertResult{}, fmt.Errorf("insert selected class: %w", err)
	}
	return insertResult(res)
}

func (r *CartRepo) ListByEmail(ctx context.Context, email string) ([]model.SelectedClass, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,class_id,email,name,image,instructor_name,price FROM selected_classes WHERE email=? ORDER BY id", email)
	if err != nil {
		return nil, fmt.Errorf("list selected classes: %w", err)
	}
	defer rows.Close()

	out := []model.SelectedClass{}
	for rows.Next() {
		var (
			id uint64
			sc model.SelectedClass
		)
		if err := rows.Scan(&id, &sc.ClassID, &sc.Email, &sc.Name, &sc.Image, &sc.InstructorName, &sc.Price); err != nil {
			return nil, err
		}
		sc.ID = formatID(id)
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *CartRepo) DeleteOwned(ctx context.Context, id, email string) (repository.DeleteResult, error) {
	sid, err := parseID(id)
	if err != nil {
		return repository.DeleteResult{}, err
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM selected_classes WHERE id=? AND email=?", sid, email)
	if err != nil {
		return repository.DeleteResult{}, fmt.Errorf("delete selected class: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return repository.DeleteResult{}, err
	}
	if n == 0 {
		var count int
		if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM selected_classes WHERE id=?", sid).Scan(&count); err != nil {
			return repository.DeleteResult{}, fmt.Errorf("look up selected class: %w", err)
		}
		if count > 0 {
			return repository.DeleteResult{}, repository.ErrForbidden
		}
	}
	return repository.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}
