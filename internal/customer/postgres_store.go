package customer

import (
	"context"
	"database/sql"
	"fmt"
)

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed dataset store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the scored_customers table if it doesn't exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scored_customers (
			customer_id         VARCHAR(20) PRIMARY KEY,
			position            INTEGER NOT NULL,
			age                 INTEGER NOT NULL,
			income              NUMERIC(16,2) NOT NULL,
			employment_status   VARCHAR(20) NOT NULL,
			dependents          INTEGER NOT NULL DEFAULT 0,
			credit_limit        NUMERIC(16,2) NOT NULL,
			credit_utilization  NUMERIC(6,2) NOT NULL,
			late_payment_count  INTEGER NOT NULL DEFAULT 0,
			account_age_months  INTEGER NOT NULL DEFAULT 0,
			payment_status      VARCHAR(20) NOT NULL,
			missed_payment_6m   INTEGER NOT NULL DEFAULT 0,
			full_payment_ratio  NUMERIC(6,2) NOT NULL DEFAULT 0,
			risk_score          INTEGER NOT NULL,
			risk_category       VARCHAR(10) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scored_customers_category ON scored_customers(risk_category);
		CREATE INDEX IF NOT EXISTS idx_scored_customers_position ON scored_customers(position);
	`)
	return err
}

// ReplaceAll swaps the stored dataset for the given one in a single transaction.
func (p *PostgresStore) ReplaceAll(ctx context.Context, records []ScoredRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scored_customers`); err != nil {
		return fmt.Errorf("clear dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scored_customers (
			customer_id, position, age, income, employment_status, dependents,
			credit_limit, credit_utilization, late_payment_count,
			account_age_months, payment_status, missed_payment_6m,
			full_payment_ratio, risk_score, risk_category
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		income := 0.0
		if r.Income != nil {
			income = *r.Income
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, i, r.Age, income, string(r.EmploymentStatus), r.Dependents,
			r.CreditLimit, r.CreditUtilization, r.LatePaymentCount,
			r.AccountAgeMonths, string(r.PaymentStatus), r.MissedPayment6M,
			r.FullPaymentRatio, r.RiskScore, string(r.RiskCategory),
		); err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// List returns records in dataset order, optionally filtered by category.
func (p *PostgresStore) List(ctx context.Context, category Category, limit int) ([]ScoredRecord, error) {
	query := `
		SELECT customer_id, age, income, employment_status, dependents,
			credit_limit, credit_utilization, late_payment_count,
			account_age_months, payment_status, missed_payment_6m,
			full_payment_ratio, risk_score, risk_category
		FROM scored_customers`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE risk_category = $1`
		args = append(args, string(category))
	}
	query += ` ORDER BY position`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []ScoredRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

// Get returns a single record by customer ID.
func (p *PostgresStore) Get(ctx context.Context, id string) (*ScoredRecord, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT customer_id, age, income, employment_status, dependents,
			credit_limit, credit_utilization, late_payment_count,
			account_age_months, payment_status, missed_payment_6m,
			full_payment_ratio, risk_score, risk_category
		FROM scored_customers WHERE customer_id = $1
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (p *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scored_customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// scannable abstracts *sql.Row and *sql.Rows for shared scanning logic.
type scannable interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scannable) (*ScoredRecord, error) {
	var rec ScoredRecord
	var income float64
	var employment, payment, category string

	err := row.Scan(
		&rec.ID, &rec.Age, &income, &employment, &rec.Dependents,
		&rec.CreditLimit, &rec.CreditUtilization, &rec.LatePaymentCount,
		&rec.AccountAgeMonths, &payment, &rec.MissedPayment6M,
		&rec.FullPaymentRatio, &rec.RiskScore, &category,
	)
	if err != nil {
		return nil, err
	}

	rec.Income = &income
	rec.EmploymentStatus = EmploymentStatus(employment)
	rec.PaymentStatus = PaymentStatus(payment)
	rec.RiskCategory = Category(category)
	return &rec, nil
}
