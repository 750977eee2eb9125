package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/payday/internal/bill"
)

const foreignKeyViolation = "23503"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SelectColumns is the column order ScanBill expects.
const SelectColumns = `id, bill_name, expected_amount, paying_account_id, due_day_of_month, is_active, created_at`

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

func ScanBill(s Scanner) (*bill.Bill, error) {
	var (
		b      bill.Bill
		dueDay sql.NullInt16
	)

	if err := s.Scan(&b.ID, &b.Name, &b.ExpectedAmount, &b.PayingAccountID, &dueDay, &b.Active, &b.CreatedAt); err != nil {
		return nil, err
	}

	if dueDay.Valid {
		b.DueDay = new(int(dueDay.Int16))
	}

	return &b, nil
}

func (s *Store) ListBills(ctx context.Context, activeOnly bool) ([]*bill.Bill, error) {
	query := `SELECT ` + SelectColumns + ` FROM bills`
	if activeOnly {
		query += ` WHERE is_active`
	}

	query += ` ORDER BY due_day_of_month ASC NULLS LAST, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	defer rows.Close()

	var bills []*bill.Bill

	for rows.Next() {
		b, err := ScanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bill: %w", err)
		}

		bills = append(bills, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bills: %w", err)
	}

	return bills, nil
}

func (s *Store) GetBill(ctx context.Context, id int64) (*bill.Bill, error) {
	query := `SELECT ` + SelectColumns + ` FROM bills WHERE id = $1`

	b, err := ScanBill(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bill.ErrNotFound
		}

		return nil, fmt.Errorf("getting bill: %w", err)
	}

	return b, nil
}

func (s *Store) CreateBills(ctx context.Context, bills []*bill.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO bills (bill_name, expected_amount, paying_account_id, due_day_of_month, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	for _, b := range bills {
		err := tx.QueryRowContext(ctx, query, b.Name, b.ExpectedAmount, b.PayingAccountID, b.DueDay, b.Active).
			Scan(&b.ID, &b.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
				return fmt.Errorf("creating bill %q: %w", b.Name, bill.ErrUnknownAccount)
			}

			return fmt.Errorf("creating bill: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bills: %w", err)
	}

	return nil
}

func (s *Store) ActivateAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE bills SET is_active = TRUE`)
	if err != nil {
		return 0, fmt.Errorf("activating bills: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("activating bills: %w", err)
	}

	return n, nil
}
