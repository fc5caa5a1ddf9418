package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/itsatony/go-cuserr"
	_ "github.com/lib/pq"
)

const (
	postgresDefaultMaxOpenConns    = 25
	postgresDefaultMaxIdleConns    = 5
	postgresDefaultConnMaxLifetime = 5 * time.Minute
	postgresDefaultQueryTimeout    = 30 * time.Second
	postgresTableName              = "testgen_runs"

	errMsgEmptyConnString = "postgres connection string must not be empty"
	errMsgOpenConn        = "failed to open postgres connection"
	errMsgPingConn        = "failed to connect to postgres"
	errMsgMigrateSchema   = "failed to migrate schema"
	errMsgSaveReport      = "failed to save report"
	errMsgLoadReport      = "failed to load report"
	errMsgLoadLatest      = "failed to load latest report"
)

// PostgresConfig configures the PostgreSQL ArtifactStore driver.
type PostgresConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	QueryTimeout     time.Duration
	AutoMigrate      bool
}

// DefaultPostgresConfig returns a PostgresConfig with sensible defaults.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		MaxOpenConns:    postgresDefaultMaxOpenConns,
		MaxIdleConns:    postgresDefaultMaxIdleConns,
		ConnMaxLifetime: postgresDefaultConnMaxLifetime,
		QueryTimeout:    postgresDefaultQueryTimeout,
	}
}

// PostgresStore implements ArtifactStore using PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	cfg    PostgresConfig
	mu     sync.RWMutex
	closed bool
}

type postgresStoreDriver struct{}

func init() {
	RegisterArtifactDriver("postgres", &postgresStoreDriver{})
}

func (d *postgresStoreDriver) Open(connectionString string) (ArtifactStore, error) {
	cfg := DefaultPostgresConfig()
	cfg.ConnectionString = connectionString
	cfg.AutoMigrate = true
	return NewPostgresStore(cfg)
}

// NewPostgresStore opens a PostgreSQL-backed ArtifactStore.
func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.ConnectionString == "" {
		return nil, cuserr.NewValidationError(errCodeStorage, errMsgEmptyConnString)
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = postgresDefaultMaxOpenConns
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = postgresDefaultMaxIdleConns
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = postgresDefaultConnMaxLifetime
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = postgresDefaultQueryTimeout
	}

	db, err := sql.Open("postgres", cfg.ConnectionString)
	if err != nil {
		return nil, cuserr.WrapStdError(err, errCodeStorage, errMsgOpenConn)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, cuserr.WrapStdError(err, errCodeStorage, errMsgPingConn)
	}

	store := &PostgresStore{db: db, cfg: cfg}
	if cfg.AutoMigrate {
		if err := store.migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return store, nil
}

var _ ArtifactStore = (*PostgresStore)(nil)

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+postgresTableName+` (
			run_id TEXT PRIMARY KEY,
			target_package TEXT NOT NULL,
			report JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_testgen_runs_package_created
			ON `+postgresTableName+` (target_package, created_at DESC);
	`)
	if err != nil {
		return cuserr.WrapStdError(err, errCodeStorage, errMsgMigrateSchema)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, runID string, r *Report) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return cuserr.NewValidationError(errCodeStorage, errMsgStoreClosed)
	}

	data, err := json.Marshal(r)
	if err != nil {
		return cuserr.WrapStdError(err, errCodeReport, errMsgEncodeReport).WithMetadata(metaKeyRunID, runID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO `+postgresTableName+` (run_id, target_package, report)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO UPDATE SET report = EXCLUDED.report, target_package = EXCLUDED.target_package
	`, runID, r.TargetPackage, data)
	if err != nil {
		return cuserr.WrapStdError(err, errCodeReport, errMsgSaveReport).WithMetadata(metaKeyRunID, runID)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, runID string) (*Report, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM `+postgresTableName+` WHERE run_id = $1`, runID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewRunNotFoundError(runID)
	}
	if err != nil {
		return nil, cuserr.WrapStdError(err, errCodeReport, errMsgLoadReport).WithMetadata(metaKeyRunID, runID)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, cuserr.WrapStdError(err, errCodeReport, errMsgDecodeReport).WithMetadata(metaKeyRunID, runID)
	}
	return &r, nil
}

func (s *PostgresStore) Latest(ctx context.Context, targetPackage string) (*Report, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT report FROM `+postgresTableName+`
		WHERE target_package = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, targetPackage).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewRunNotFoundError(targetPackage)
	}
	if err != nil {
		return nil, cuserr.WrapStdError(err, errCodeReport, errMsgLoadLatest)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, cuserr.WrapStdError(err, errCodeReport, errMsgDecodeReport)
	}
	return &r, nil
}

func (s *PostgresStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
