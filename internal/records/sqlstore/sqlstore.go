package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"achpay/internal/core"
	"achpay/internal/records"
)

const (
	sqliteName   = "sqlite"
	postgresName = "postgres"
)

// Dialect selects the SQL driver and the date projection for a database.
type Dialect struct {
	name       string
	driverName string
	dateExpr   string
}

var (
	SQLite   = Dialect{name: sqliteName, driverName: "sqlite", dateExpr: "scheduled_date"}
	Postgres = Dialect{name: postgresName, driverName: "postgres", dateExpr: "to_char(scheduled_date, 'YYYY-MM-DD')"}
)

// Source reads payments from the ach_payments table.
type Source struct {
	db      *sql.DB
	dialect Dialect
	label   string
}

var _ records.Source = (*Source)(nil)

// OpenSQLite opens (creating if needed) a SQLite database and migrates it.
func OpenSQLite(dbPath string) (*Source, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(SQLite, dbPath, "sqlite:"+dbPath)
}

// OpenPostgres connects to Postgres and migrates it.
func OpenPostgres(dsn string) (*Source, error) {
	return open(Postgres, dsn, "postgres")
}

func open(d Dialect, dsn, label string) (*Source, error) {
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.name, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Source{db: db, dialect: d, label: label}, nil
}

func (s *Source) Name() string { return s.label }

// Load returns every row ordered by position.
func (s *Source) Load(ctx context.Context) ([]core.Payment, error) {
	query := fmt.Sprintf(
		`SELECT id, amount, currency, recipient, %s FROM ach_payments ORDER BY position`,
		s.dialect.dateExpr)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	out := make([]core.Payment, 0)
	for rows.Next() {
		var (
			p    core.Payment
			date string
		)
		if err := rows.Scan(&p.ID, &p.Amount, &p.Currency, &p.Recipient, &date); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if p.ScheduledDate, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return out, nil
}

func (s *Source) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
