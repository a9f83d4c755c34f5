package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// Email columns compare byte-for-byte so one user's token cannot match a
// differently cased address.
func TestBootstrapUsesBinaryEmailCollation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users .*email VARCHAR\(255\) COLLATE utf8mb4_bin NOT NULL,.*role VARCHAR\(32\) COLLATE utf8mb4_bin`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS classes .*instructor_email VARCHAR\(255\) COLLATE utf8mb4_bin`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS selected_classes .*email VARCHAR\(255\) COLLATE utf8mb4_bin NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := bootstrap(context.Background(), db); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
