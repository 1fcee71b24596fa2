package refdata

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/medtrace-labs/medverify-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS medicines (
	name           TEXT PRIMARY KEY,
	expected_price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS allocations (
	batch_number       TEXT PRIMARY KEY,
	generic_name       TEXT NOT NULL DEFAULT '',
	brand_name         TEXT NOT NULL DEFAULT '',
	manufacturer       TEXT NOT NULL DEFAULT '',
	allocated_location TEXT NOT NULL,
	manufacturing_date DATETIME,
	expiry_date        DATETIME
);

CREATE TABLE IF NOT EXISTS fraud_reports (
	id                 TEXT PRIMARY KEY,
	batch_number       TEXT NOT NULL,
	allocated_location TEXT NOT NULL,
	reported_location  TEXT NOT NULL,
	message            TEXT NOT NULL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_fraud_reports_batch ON fraud_reports(batch_number);
CREATE INDEX IF NOT EXISTS idx_fraud_reports_created ON fraud_reports(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadCatalog(ctx context.Context) ([]model.MedicineRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, expected_price FROM medicines ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load catalog")
	}
	defer rows.Close()

	var records []model.MedicineRecord
	for rows.Next() {
		var r model.MedicineRecord
		if err := rows.Scan(&r.Name, &r.ExpectedPrice); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan medicine")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: load catalog iterate")
}

func (s *SQLiteStore) LoadRegistry(ctx context.Context) ([]model.AllocationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_number, generic_name, brand_name, manufacturer, allocated_location,
		        manufacturing_date, expiry_date
		 FROM allocations ORDER BY batch_number`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load registry")
	}
	defer rows.Close()

	var records []model.AllocationRecord
	for rows.Next() {
		var r model.AllocationRecord
		var mfg, exp sql.NullTime
		if err := rows.Scan(&r.BatchNumber, &r.GenericName, &r.BrandName, &r.Manufacturer,
			&r.AllocatedLocation, &mfg, &exp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan allocation")
		}
		r.ManufacturingDate = mfg.Time
		r.ExpiryDate = exp.Time
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: load registry iterate")
}

func (s *SQLiteStore) UpsertMedicines(ctx context.Context, records []model.MedicineRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert medicines")
	}
	defer tx.Rollback()

	count := 0
	for _, r := range records {
		if r.Name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO medicines (name, expected_price) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET expected_price = excluded.expected_price`,
			r.Name, r.ExpectedPrice,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert medicine %s", r.Name)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert medicines")
	}
	return count, nil
}

func (s *SQLiteStore) UpsertAllocations(ctx context.Context, records []model.AllocationRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert allocations")
	}
	defer tx.Rollback()

	count := 0
	for _, r := range records {
		if r.BatchNumber == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO allocations
			   (batch_number, generic_name, brand_name, manufacturer, allocated_location,
			    manufacturing_date, expiry_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(batch_number) DO UPDATE SET
			   generic_name = excluded.generic_name,
			   brand_name = excluded.brand_name,
			   manufacturer = excluded.manufacturer,
			   allocated_location = excluded.allocated_location,
			   manufacturing_date = excluded.manufacturing_date,
			   expiry_date = excluded.expiry_date`,
			r.BatchNumber, r.GenericName, r.BrandName, r.Manufacturer, r.AllocatedLocation,
			nullTime(r.ManufacturingDate), nullTime(r.ExpiryDate),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert allocation %s", r.BatchNumber)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert allocations")
	}
	return count, nil
}

func (s *SQLiteStore) SaveFraudReport(ctx context.Context, report *model.FraudReport) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fraud_reports (id, batch_number, allocated_location, reported_location, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.ID, report.BatchNumber, report.AllocatedLocation, report.ReportedLocation,
		report.Message, report.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: save fraud report")
}

func (s *SQLiteStore) ListFraudReports(ctx context.Context, limit int) ([]model.FraudReport, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_number, allocated_location, reported_location, message, created_at
		 FROM fraud_reports ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list fraud reports")
	}
	defer rows.Close()

	var reports []model.FraudReport
	for rows.Next() {
		var r model.FraudReport
		if err := rows.Scan(&r.ID, &r.BatchNumber, &r.AllocatedLocation, &r.ReportedLocation,
			&r.Message, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan fraud report")
		}
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: list fraud reports iterate")
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
