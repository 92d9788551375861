package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/store"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ReplaceSeries(ctx context.Context, observations []model.TimeSeriesObservation) error {
	return s.replace(ctx, "silver_bcb_sgs",
		`INSERT INTO silver_bcb_sgs (series_id, series_name, date, value) VALUES (?, ?, ?, ?)`,
		len(observations),
		func(i int) []any {
			o := observations[i]
			return []any{o.SeriesID, o.SeriesName, o.Date.Format(dateLayout), o.Value}
		},
	)
}

func (s *Store) ReplacePrices(ctx context.Context, observations []model.PriceObservation) error {
	return s.replace(ctx, "silver_anp_prices",
		`INSERT INTO silver_anp_prices (date_ref, uf_sigla, product, price) VALUES (?, ?, ?, ?)`,
		len(observations),
		func(i int) []any {
			o := observations[i]
			return []any{o.DateRef.Format(dateLayout), o.UFSigla, o.Product, o.Price}
		},
	)
}

func (s *Store) ReplaceRegions(ctx context.Context, regions []model.Region) error {
	return s.replace(ctx, "dim_uf",
		`INSERT INTO dim_uf (uf_id, uf_sigla, uf_nome, regiao_nome) VALUES (?, ?, ?, ?)`,
		len(regions),
		func(i int) []any {
			r := regions[i]
			return []any{r.ID, r.Sigla, r.Nome, r.RegiaoNome}
		},
	)
}

func (s *Store) ReplaceSeriesMonthly(ctx context.Context, rows []model.SeriesMonthly) error {
	return s.replace(ctx, "gold_bcb_monthly",
		`INSERT INTO gold_bcb_monthly (series_id, series_name, month, avg_value, last_value) VALUES (?, ?, ?, ?, ?)`,
		len(rows),
		func(i int) []any {
			r := rows[i]
			return []any{r.SeriesID, r.SeriesName, r.Month.Format(dateLayout), r.AvgValue, r.LastValue}
		},
	)
}

func (s *Store) ReplacePriceMonthly(ctx context.Context, rows []model.PriceMonthly) error {
	return s.replace(ctx, "gold_anp_monthly",
		`INSERT INTO gold_anp_monthly (uf_sigla, product, month, avg_price, mom_change) VALUES (?, ?, ?, ?, ?)`,
		len(rows),
		func(i int) []any {
			r := rows[i]
			var momChange any
			if r.HasMoM {
				momChange = r.MoMChange
			}
			return []any{r.UFSigla, r.Product, r.Month.Format(dateLayout), r.AvgPrice, momChange}
		},
	)
}

// replace deletes every row of table and inserts count new rows in a single transaction.
func (s *Store) replace(ctx context.Context, table, insert string, count int, args func(i int) []any) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("sqlite: clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < count; i++ {
		if _, err = stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("sqlite: insert into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func (s *Store) ListSeries(ctx context.Context) ([]model.TimeSeriesObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_id, series_name, date, value
		FROM silver_bcb_sgs
		ORDER BY series_id, date
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.TimeSeriesObservation, 0)
	for rows.Next() {
		var row model.TimeSeriesObservation
		var date string
		if err := rows.Scan(&row.SeriesID, &row.SeriesName, &date, &row.Value); err != nil {
			return nil, err
		}
		if row.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("sqlite: silver_bcb_sgs date %q: %w", date, err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) ListPrices(ctx context.Context) ([]model.PriceObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date_ref, uf_sigla, product, price
		FROM silver_anp_prices
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.PriceObservation, 0)
	for rows.Next() {
		var row model.PriceObservation
		var date string
		if err := rows.Scan(&date, &row.UFSigla, &row.Product, &row.Price); err != nil {
			return nil, err
		}
		if row.DateRef, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("sqlite: silver_anp_prices date_ref %q: %w", date, err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ListTables reports every table and view with its row count.
func (s *Store) ListTables(ctx context.Context) ([]store.TableInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}

	tables := make([]store.TableInfo, 0)
	for rows.Next() {
		var info store.TableInfo
		if err := rows.Scan(&info.Name, &info.Type); err != nil {
			rows.Close()
			return nil, err
		}
		tables = append(tables, info)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// names come from sqlite_master, not from user input
	for i := range tables {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "`+tables[i].Name+`"`).Scan(&tables[i].Rows); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// LatestSeries returns the most recent silver series observations, newest first.
func (s *Store) LatestSeries(ctx context.Context, limit int) ([]model.TimeSeriesObservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_id, series_name, date, value
		FROM silver_bcb_sgs
		ORDER BY date DESC, series_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.TimeSeriesObservation, 0, limit)
	for rows.Next() {
		var row model.TimeSeriesObservation
		var date string
		if err := rows.Scan(&row.SeriesID, &row.SeriesName, &date, &row.Value); err != nil {
			return nil, err
		}
		row.Date, _ = time.Parse(dateLayout, date)
		results = append(results, row)
	}
	return results, rows.Err()
}

// LatestPriceMonthly returns the most recent gold price rows, newest month first.
func (s *Store) LatestPriceMonthly(ctx context.Context, limit int) ([]model.PriceMonthly, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uf_sigla, product, month, avg_price, mom_change
		FROM gold_anp_monthly
		ORDER BY month DESC, uf_sigla, product
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.PriceMonthly, 0, limit)
	for rows.Next() {
		var row model.PriceMonthly
		var month string
		var momChange sql.NullFloat64
		if err := rows.Scan(&row.UFSigla, &row.Product, &month, &row.AvgPrice, &momChange); err != nil {
			return nil, err
		}
		row.Month, _ = time.Parse(dateLayout, month)
		row.MoMChange = momChange.Float64
		row.HasMoM = momChange.Valid
		results = append(results, row)
	}
	return results, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS silver_bcb_sgs (
			series_id INTEGER NOT NULL,
			series_name TEXT NOT NULL,
			date TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (series_id, date)
		);`,
		`CREATE TABLE IF NOT EXISTS silver_anp_prices (
			date_ref TEXT NOT NULL,
			uf_sigla TEXT NOT NULL,
			product TEXT NOT NULL,
			price REAL NOT NULL CHECK (price > 0),
			PRIMARY KEY (date_ref, uf_sigla, product)
		);`,
		`CREATE TABLE IF NOT EXISTS dim_uf (
			uf_id INTEGER NOT NULL,
			uf_sigla TEXT NOT NULL PRIMARY KEY,
			uf_nome TEXT NOT NULL,
			regiao_nome TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS gold_bcb_monthly (
			series_id INTEGER NOT NULL,
			series_name TEXT NOT NULL,
			month TEXT NOT NULL,
			avg_value REAL NOT NULL,
			last_value REAL NOT NULL,
			PRIMARY KEY (series_id, series_name, month)
		);`,
		`CREATE TABLE IF NOT EXISTS gold_anp_monthly (
			uf_sigla TEXT NOT NULL,
			product TEXT NOT NULL,
			month TEXT NOT NULL,
			avg_price REAL NOT NULL,
			mom_change REAL,
			PRIMARY KEY (uf_sigla, product, month)
		);`,
		`CREATE VIEW IF NOT EXISTS silver_anp_prices_uf AS
			SELECT p.date_ref, p.uf_sigla, p.product, p.price, d.uf_nome, d.regiao_nome
			FROM silver_anp_prices p
			LEFT JOIN dim_uf d ON d.uf_sigla = p.uf_sigla;`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

var _ store.Store = (*Store)(nil)
