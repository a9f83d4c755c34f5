// Package mysqlstore implements the repository contracts on MySQL.  Ids are
// AUTO_INCREMENT keys rendered as decimal strings.
package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/course-enrollment/internal/repository"
)

// New builds the full set of stores on db; Stores.Close closes db.
func New(db *sql.DB) *repository.Stores {
	return repository.NewStores(NewUserRepo(db), NewClassRepo(db), NewCartRepo(db),
		func(context.Context) error { return db.Close() })
}

// WithFoundRows returns dsn with clientFoundRows enabled so UPDATE reports
// matched rows rather than changed rows.
func WithFoundRows(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func parseID(id string) (uint64, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, repository.ErrInvalidID
	}
	return n, nil
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func insertResult(res sql.Result) (repository.InsertResult, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return repository.InsertResult{}, err
	}
	return repository.InsertResult{Acknowledged: true, InsertedID: formatID(uint64(id))}, nil
}

// updateResult relies on clientFoundRows: affected rows are matched rows.
func updateResult(res sql.Result) (repository.UpdateResult, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return repository.UpdateResult{}, err
	}
	return repository.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}
