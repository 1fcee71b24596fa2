package refdata

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/medtrace-labs/medverify-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore; pgxmock
// satisfies it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS medicines (
	name           TEXT PRIMARY KEY,
	expected_price DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
	batch_number       TEXT PRIMARY KEY,
	generic_name       TEXT NOT NULL DEFAULT '',
	brand_name         TEXT NOT NULL DEFAULT '',
	manufacturer       TEXT NOT NULL DEFAULT '',
	allocated_location TEXT NOT NULL,
	manufacturing_date TIMESTAMPTZ,
	expiry_date        TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS fraud_reports (
	id                 TEXT PRIMARY KEY,
	batch_number       TEXT NOT NULL,
	allocated_location TEXT NOT NULL,
	reported_location  TEXT NOT NULL,
	message            TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_fraud_reports_batch ON fraud_reports(batch_number);
CREATE INDEX IF NOT EXISTS idx_fraud_reports_created ON fraud_reports(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) LoadCatalog(ctx context.Context) ([]model.MedicineRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, expected_price FROM medicines ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load catalog")
	}
	defer rows.Close()

	var records []model.MedicineRecord
	for rows.Next() {
		var r model.MedicineRecord
		if err := rows.Scan(&r.Name, &r.ExpectedPrice); err != nil {
			return nil, eris.Wrap(err, "postgres: scan medicine")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: load catalog iterate")
}

func (s *PostgresStore) LoadRegistry(ctx context.Context) ([]model.AllocationRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT batch_number, generic_name, brand_name, manufacturer, allocated_location,
		        manufacturing_date, expiry_date
		 FROM allocations ORDER BY batch_number`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load registry")
	}
	defer rows.Close()

	var records []model.AllocationRecord
	for rows.Next() {
		var r model.AllocationRecord
		var mfg, exp sql.NullTime
		if err := rows.Scan(&r.BatchNumber, &r.GenericName, &r.BrandName, &r.Manufacturer,
			&r.AllocatedLocation, &mfg, &exp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan allocation")
		}
		r.ManufacturingDate = mfg.Time
		r.ExpiryDate = exp.Time
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: load registry iterate")
}

func (s *PostgresStore) UpsertMedicines(ctx context.Context, records []model.MedicineRecord) (int, error) {
	count := 0
	for _, r := range records {
		if r.Name == "" {
			continue
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO medicines (name, expected_price) VALUES ($1, $2)
			 ON CONFLICT (name) DO UPDATE SET expected_price = EXCLUDED.expected_price`,
			r.Name, r.ExpectedPrice,
		); err != nil {
			return count, eris.Wrapf(err, "postgres: upsert medicine %s", r.Name)
		}
		count++
	}
	return count, nil
}

func (s *PostgresStore) UpsertAllocations(ctx context.Context, records []model.AllocationRecord) (int, error) {
	count := 0
	for _, r := range records {
		if r.BatchNumber == "" {
			continue
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO allocations
			   (batch_number, generic_name, brand_name, manufacturer, allocated_location,
			    manufacturing_date, expiry_date)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (batch_number) DO UPDATE SET
			   generic_name = EXCLUDED.generic_name,
			   brand_name = EXCLUDED.brand_name,
			   manufacturer = EXCLUDED.manufacturer,
			   allocated_location = EXCLUDED.allocated_location,
			   manufacturing_date = EXCLUDED.manufacturing_date,
			   expiry_date = EXCLUDED.expiry_date`,
			r.BatchNumber, r.GenericName, r.BrandName, r.Manufacturer, r.AllocatedLocation,
			pgNullTime(r.ManufacturingDate), pgNullTime(r.ExpiryDate),
		); err != nil {
			return count, eris.Wrapf(err, "postgres: upsert allocation %s", r.BatchNumber)
		}
		count++
	}
	return count, nil
}

func (s *PostgresStore) SaveFraudReport(ctx context.Context, report *model.FraudReport) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fraud_reports (id, batch_number, allocated_location, reported_location, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.BatchNumber, report.AllocatedLocation, report.ReportedLocation,
		report.Message, report.CreatedAt,
	)
	return eris.Wrap(err, "postgres: save fraud report")
}

func (s *PostgresStore) ListFraudReports(ctx context.Context, limit int) ([]model.FraudReport, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, batch_number, allocated_location, reported_location, message, created_at
		 FROM fraud_reports ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: list fraud reports")
	}
	defer rows.Close()

	var reports []model.FraudReport
	for rows.Next() {
		var r model.FraudReport
		if err := rows.Scan(&r.ID, &r.BatchNumber, &r.AllocatedLocation, &r.ReportedLocation,
			&r.Message, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan fraud report")
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "postgres: list fraud reports iterate")
}

func pgNullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
