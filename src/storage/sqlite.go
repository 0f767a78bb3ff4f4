package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// AsyncSQLiteDB stores ts_utc as INTEGER unix microseconds so ordering and
// range predicates are numeric.
// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize(ctx context.Context) error {
	db, err := openDB(ctx, "sqlite", d.Config.Storage.DBPath, d.Logger)
	if err != nil {
		return helpers.NewDatabaseError("open sqlite "+d.Config.Storage.DBPath, err)
	}

	// one writer at a time; WAL lets readers proceed
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	if err := d.createTables(ctx); err != nil {
		return helpers.NewDatabaseError("create sqlite schema", err)
	}

	d.Logger.Info("SQLite store ready (%s)", d.Config.Storage.DBPath)
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS exchange_rates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pair TEXT NOT NULL,
			rate REAL NOT NULL,
			ts_utc INTEGER NOT NULL
		);
	`
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create exchange_rates: %w", err)
	}

	if _, err := d.DB.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_pair_ts ON exchange_rates(pair, ts_utc);"); err != nil {
		return fmt.Errorf("failed to create idx_pair_ts: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveRate(ctx context.Context, pair string, rate float64, tsUTC time.Time) error {
	_, err := d.DB.ExecContext(ctx,
		"INSERT INTO exchange_rates (pair, rate, ts_utc) VALUES (?, ?, ?)",
		pair, rate, tsUTC.UTC().UnixMicro(),
	)
	if err != nil {
		return helpers.NewDatabaseError("save rate "+pair, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) LoadHistory(ctx context.Context, pair string, limit int, start, end *time.Time) ([]models.MStoredRate, error) {
	q := d.newRangeQuery()
	query := "SELECT rate, ts_utc FROM exchange_rates WHERE " + q.where(pair, start, end) +
		" ORDER BY ts_utc ASC, id ASC LIMIT ?"

	rows, err := d.DB.QueryContext(ctx, query, append(q.args, limit)...)
	if err != nil {
		return nil, helpers.NewDatabaseError("load history "+pair, err)
	}
	defer rows.Close()

	result := make([]models.MStoredRate, 0)
	for rows.Next() {
		var (
			rate  float64
			micro int64
		)
		if err := rows.Scan(&rate, &micro); err != nil {
			return nil, helpers.NewDatabaseError("scan history "+pair, err)
		}
		result = append(result, models.MStoredRate{Pair: pair, Rate: rate, TsUTC: time.UnixMicro(micro).UTC()})
	}

	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("load history "+pair, err)
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) DeleteHistory(ctx context.Context, pair string, start, end *time.Time) (int64, error) {
	q := d.newRangeQuery()
	res, err := d.DB.ExecContext(ctx, "DELETE FROM exchange_rates WHERE "+q.where(pair, start, end), q.args...)
	if err != nil {
		return 0, helpers.NewDatabaseError("delete history "+pair, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, helpers.NewDatabaseError("delete history "+pair, err)
	}
	return deleted, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) newRangeQuery() *rangeQuery {
	return &rangeQuery{
		placeholder: func(int) string { return "?" },
		encodeTime:  func(t time.Time) interface{} { return t.UTC().UnixMicro() },
	}
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Ping(ctx context.Context) error {
	if d.DB == nil {
		return helpers.NewDatabaseError("ping sqlite", sql.ErrConnDone)
	}
	return d.DB.PingContext(ctx)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
