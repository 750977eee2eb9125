package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	billstore "github.com/MrJamesThe3rd/payday/internal/bill/store"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (funds.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &unitOfWork{tx: tx}, nil
}

type unitOfWork struct {
	tx *sql.Tx
}

// LockAccounts takes row locks in id order so concurrent movements over
// overlapping accounts cannot deadlock.
func (u *unitOfWork) LockAccounts(ctx context.Context, ids []int64) (map[int64]*account.Account, error) {
	if len(ids) == 0 {
		return map[int64]*account.Account{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))

	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `
		SELECT id, account_name, current_cleared_balance, created_at, updated_at
		FROM accounts
		WHERE id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY id
		FOR UPDATE`

	rows, err := u.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("locking accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[int64]*account.Account, len(ids))

	for rows.Next() {
		var acc account.Account
		if err := rows.Scan(&acc.ID, &acc.Name, &acc.Balance, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accounts[acc.ID] = &acc
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("account %d: %w", id, account.ErrNotFound)
		}
	}

	return accounts, nil
}

func (u *unitOfWork) UpdateBalances(ctx context.Context, balances map[int64]decimal.Decimal) error {
	ids := make([]int64, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	query := `UPDATE accounts SET current_cleared_balance = $1, updated_at = NOW() WHERE id = $2`

	for _, id := range ids {
		if _, err := u.tx.ExecContext(ctx, query, balances[id], id); err != nil {
			return fmt.Errorf("updating balance of account %d: %w", id, err)
		}
	}

	return nil
}

func (u *unitOfWork) AppendEntries(ctx context.Context, entries []*ledger.Entry) error {
	query := `
		INSERT INTO ledger (transaction_date, amount, source_account_id, destination_account_id, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	for _, e := range entries {
		err := u.tx.QueryRowContext(ctx, query,
			e.Date,
			e.Amount,
			e.SourceAccountID,
			e.DestinationAccountID,
			string(e.Status),
			e.Description,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting ledger entry: %w", err)
		}
	}

	return nil
}

func (u *unitOfWork) LockBill(ctx context.Context, id int64) (*bill.Bill, error) {
	query := `SELECT ` + billstore.SelectColumns + ` FROM bills WHERE id = $1 FOR UPDATE`

	b, err := billstore.ScanBill(u.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bill.ErrNotFound
		}

		return nil, fmt.Errorf("locking bill: %w", err)
	}

	return b, nil
}

func (u *unitOfWork) DeactivateBill(ctx context.Context, id int64) error {
	res, err := u.tx.ExecContext(ctx, `UPDATE bills SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivating bill: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating bill: %w", err)
	}

	if n == 0 {
		return bill.ErrNotFound
	}

	return nil
}

func (u *unitOfWork) Commit() error {
	return u.tx.Commit()
}

// Rollback is a no-op after Commit.
func (u *unitOfWork) Rollback() error {
	err := u.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}

	return err
}
