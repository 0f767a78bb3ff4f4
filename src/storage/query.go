package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/interfaces"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"
)

// Connection attempts on Initialize before giving up
const (
	connectAttempts = 3
	connectDelay    = 500 * time.Millisecond
)

// -----------------------------------------------------------------------------

// NewRateStore picks the store implementation from storage.db_type.
func NewRateStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IRateStore, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		return NewPostgresDB(cfg, log)
	case "sqlite", "":
		return NewAsyncSQLiteDB(cfg, log)
	default:
		return nil, helpers.NewConfigurationError("unsupported db_type "+cfg.Storage.DBType, nil)
	}
}

// -----------------------------------------------------------------------------

// rangeQuery builds "pair = ? [AND ts_utc >= ?] [AND ts_utc <= ?]" with the
// driver's placeholder style and time encoding.
type rangeQuery struct {
	placeholder func(n int) string
	encodeTime  func(t time.Time) interface{}

	clauses []string
	args    []interface{}
}

func (q *rangeQuery) add(format string, value interface{}) {
	q.args = append(q.args, value)
	q.clauses = append(q.clauses, fmt.Sprintf(format, q.placeholder(len(q.args))))
}

func (q *rangeQuery) where(pair string, start, end *time.Time) string {
	q.add("pair = %s", pair)
	if start != nil {
		q.add("ts_utc >= %s", q.encodeTime(*start))
	}
	if end != nil {
		q.add("ts_utc <= %s", q.encodeTime(*end))
	}
	return strings.Join(q.clauses, " AND ")
}

// -----------------------------------------------------------------------------

func openDB(ctx context.Context, driver, dsn string, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	err = helpers.RetryWithBackoff(ctx, connectAttempts, connectDelay, func() error {
		if err := db.PingContext(ctx); err != nil {
			log.Warning("%s not reachable yet: %v", driver, err)
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
