package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/lukman83/sheetgen/internal/models"
	_ "modernc.org/sqlite"
)

// SQLStore keeps one row per product and per sheet with JSON payloads.
// It runs on SQLite (pure Go driver) and PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s: empty data source", driver)
	}
	if driver == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	seq := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		seq = "seq BIGSERIAL PRIMARY KEY"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			` + seq + `,
			id TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sheets (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS sheets_product_id ON sheets(product_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $1..$n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQLStore) Append(ctx context.Context, rec models.Record) error {
	product, err := json.Marshal(rec.Product)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO products (id, created_at, payload) VALUES (?, ?, ?)`),
		rec.Product.ID, rec.Product.CreatedAt, string(product)); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	if rec.Sheet != nil {
		sheet, err := json.Marshal(rec.Sheet)
		if err != nil {
			return fmt.Errorf("encode sheet: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO sheets (id, product_id, payload) VALUES (?, ?, ?)`),
			rec.Sheet.ID, rec.Product.ID, string(sheet)); err != nil {
			return fmt.Errorf("insert sheet: %w", err)
		}
	}
	return tx.Commit()
}

const selectRecords = `SELECT p.payload, s.payload FROM products p LEFT JOIN sheets s ON s.product_id = p.id`

func (s *SQLStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+` ORDER BY p.seq`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) FindByProductID(ctx context.Context, id string) (models.Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(selectRecords+` WHERE p.id = ?`), id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (models.Record, error) {
	var product string
	var sheet sql.NullString
	if err := sc.Scan(&product, &sheet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, err
		}
		return models.Record{}, fmt.Errorf("scan record: %w", err)
	}

	var rec models.Record
	if err := json.Unmarshal([]byte(product), &rec.Product); err != nil {
		return models.Record{}, fmt.Errorf("decode product: %w", err)
	}
	if sheet.Valid {
		rec.Sheet = &models.Sheet{}
		if err := json.Unmarshal([]byte(sheet.String), rec.Sheet); err != nil {
			return models.Record{}, fmt.Errorf("decode sheet: %w", err)
		}
	}
	return rec, nil
}

func (s *SQLStore) DeleteProduct(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM sheets WHERE product_id = ?`), id); err != nil {
		return fmt.Errorf("delete sheets: %w", err)
	}
	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete product: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) DeleteSheet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM sheets WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
