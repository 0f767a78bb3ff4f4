package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, helpers.NewConfigurationError("postgres needs storage.db_connection_string (DATABASE_URL)", nil)
	}

	schema := cfg.Storage.Schema
	if schema == "" {
		schema = "public"
	}

	return &PostgresDB{
		Config: cfg,
		Schema: schema,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

// NormalizeDSN accepts Heroku-style postgres:// URLs and requires TLS for
// anything that is not a local database.
func NormalizeDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") {
		dsn = "postgresql://" + strings.TrimPrefix(dsn, "postgres://")
	}

	if strings.Contains(dsn, "sslmode=") || isLocalDSN(dsn) {
		return dsn
	}

	if strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&sslmode=require"
		}
		return dsn + "?sslmode=require"
	}
	// key=value form
	return dsn + " sslmode=require"
}

func isLocalDSN(dsn string) bool {
	host := dsn
	if u, err := url.Parse(dsn); err == nil && u.Host != "" {
		host = u.Hostname()
	}
	return strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1")
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	db, err := openDB(ctx, "postgres", NormalizeDSN(d.Config.Storage.DBConnectionString), d.Logger)
	if err != nil {
		return helpers.NewDatabaseError("open postgres", err)
	}
	d.DB = db

	// Create Schema
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return helpers.NewDatabaseError("create schema "+d.Schema, err)
	}

	if err := d.createTables(ctx); err != nil {
		return helpers.NewDatabaseError("create postgres tables", err)
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			pair TEXT NOT NULL,
			rate DOUBLE PRECISION NOT NULL,
			ts_utc TIMESTAMPTZ NOT NULL
		);
	`, d.table())
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create exchange_rates: %w", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_pair_ts ON %s (pair, ts_utc);`, d.table())
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create idx_pair_ts: %w", err)
	}

	return nil
}

func (d *PostgresDB) table() string {
	return fmt.Sprintf(`"%s"."exchange_rates"`, d.Schema)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveRate(ctx context.Context, pair string, rate float64, tsUTC time.Time) error {
	query := fmt.Sprintf(`INSERT INTO %s (pair, rate, ts_utc) VALUES ($1, $2, $3)`, d.table())
	if _, err := d.DB.ExecContext(ctx, query, pair, rate, tsUTC.UTC()); err != nil {
		return helpers.NewDatabaseError("save rate "+pair, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) LoadHistory(ctx context.Context, pair string, limit int, start, end *time.Time) ([]models.MStoredRate, error) {
	q := d.newRangeQuery()
	where := q.where(pair, start, end)
	query := fmt.Sprintf(`SELECT rate, ts_utc FROM %s WHERE %s ORDER BY ts_utc ASC, id ASC LIMIT $%d`,
		d.table(), where, len(q.args)+1)

	rows, err := d.DB.QueryContext(ctx, query, append(q.args, limit)...)
	if err != nil {
		return nil, helpers.NewDatabaseError("load history "+pair, err)
	}
	defer rows.Close()

	result := make([]models.MStoredRate, 0)
	for rows.Next() {
		var (
			rate float64
			ts   time.Time
		)
		if err := rows.Scan(&rate, &ts); err != nil {
			return nil, helpers.NewDatabaseError("scan history "+pair, err)
		}
		result = append(result, models.MStoredRate{Pair: pair, Rate: rate, TsUTC: ts.UTC()})
	}

	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("load history "+pair, err)
	}
	return result, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) DeleteHistory(ctx context.Context, pair string, start, end *time.Time) (int64, error) {
	q := d.newRangeQuery()
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s`, d.table(), q.where(pair, start, end))

	res, err := d.DB.ExecContext(ctx, query, q.args...)
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

func (d *PostgresDB) newRangeQuery() *rangeQuery {
	return &rangeQuery{
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		encodeTime:  func(t time.Time) interface{} { return t.UTC() },
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Ping(ctx context.Context) error {
	if d.DB == nil {
		return helpers.NewDatabaseError("ping postgres", sql.ErrConnDone)
	}
	return d.DB.PingContext(ctx)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
