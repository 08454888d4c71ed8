package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rpfaria/fundpulse-backend/internal/domain"
)

// transferExecutor implements domain.TransferExecutor against savings
// accounts. Each transfer runs in one database transaction: balance check,
// both balance mutations, both account entries and the linking transfer
// record commit or roll back together.
type transferExecutor struct {
	db *DB
}

// NewTransferExecutor creates a new savings account transfer executor
func NewTransferExecutor(db *DB) domain.TransferExecutor {
	return &transferExecutor{db: db}
}

type accountRow struct {
	id       uuid.UUID
	status   string
	balance  decimal.Decimal
	currency string
}

// Transfer moves funds per the request and returns a receipt identifying the
// created ledger artifacts. All failures come back as *domain.TransferError.
func (e *transferExecutor) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.TransferReceipt, error) {
	if !req.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.NewTransferError(domain.TransferFailureValidation,
			"transfer amount must be positive", nil)
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, domain.NewTransferError(domain.TransferFailureValidation,
			"source and destination accounts must differ", nil)
	}

	var receipt *domain.TransferReceipt
	err := e.db.withTx(ctx, func(tx *sql.Tx) error {
		from, err := lockAccount(ctx, tx, req.FromAccountID)
		if err != nil {
			return classifyAccountError(err, "source", req.FromAccountID)
		}
		to, err := lockAccount(ctx, tx, req.ToAccountID)
		if err != nil {
			return classifyAccountError(err, "destination", req.ToAccountID)
		}

		if from.status != "ACTIVE" {
			return domain.NewTransferError(domain.TransferFailureValidation,
				fmt.Sprintf("source account %s is not active", from.id), nil)
		}
		if to.status != "ACTIVE" {
			return domain.NewTransferError(domain.TransferFailureValidation,
				fmt.Sprintf("destination account %s is not active", to.id), nil)
		}
		if from.currency != to.currency {
			return domain.NewTransferError(domain.TransferFailureValidation,
				fmt.Sprintf("currency mismatch: %s vs %s", from.currency, to.currency), nil)
		}
		if !req.WaiveBalanceCheck && from.balance.LessThan(req.Amount) {
			return domain.NewTransferError(domain.TransferFailureInsufficientBalance,
				fmt.Sprintf("balance %s on account %s is below %s", from.balance, from.id, req.Amount), nil)
		}

		if err := adjustBalance(ctx, tx, from.id, req.Amount.Neg()); err != nil {
			return classifyInfraError(err)
		}
		if err := adjustBalance(ctx, tx, to.id, req.Amount); err != nil {
			return classifyInfraError(err)
		}

		withdrawalID, err := insertEntry(ctx, tx, from.id, "WITHDRAWAL", req)
		if err != nil {
			return classifyInfraError(err)
		}
		depositID, err := insertEntry(ctx, tx, to.id, "DEPOSIT", req)
		if err != nil {
			return classifyInfraError(err)
		}

		transferID := uuid.New()
		insertTransfer := `
			INSERT INTO account_transfers (id, withdrawal_entry_id, deposit_entry_id, is_reversed,
			                               transaction_date, currency_code, amount, description)
			VALUES ($1, $2, $3, false, $4, $5, $6, $7)
		`
		_, err = tx.ExecContext(ctx, insertTransfer,
			transferID, withdrawalID, depositID, req.Date, from.currency, req.Amount, req.Description)
		if err != nil {
			return classifyInfraError(fmt.Errorf("failed to insert account transfer: %w", err))
		}

		receipt = &domain.TransferReceipt{
			TransferID:        transferID,
			WithdrawalEntryID: withdrawalID,
			DepositEntryID:    depositID,
			Amount:            req.Amount,
		}
		return nil
	})
	if err != nil {
		var terr *domain.TransferError
		if errors.As(err, &terr) {
			return nil, terr
		}
		return nil, classifyInfraError(err)
	}

	return receipt, nil
}

// Reverse voids a completed transfer and compensates both account balances.
// A second reversal of the same transfer is a no-op; the record itself is
// never deleted.
func (e *transferExecutor) Reverse(ctx context.Context, transferID uuid.UUID) error {
	return e.db.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT t.is_reversed, t.amount, w.account_id, d.account_id
			FROM account_transfers t
			JOIN account_entries w ON w.id = t.withdrawal_entry_id
			JOIN account_entries d ON d.id = t.deposit_entry_id
			WHERE t.id = $1
			FOR UPDATE OF t
		`

		var (
			reversed      bool
			amount        decimal.Decimal
			fromAccountID uuid.UUID
			toAccountID   uuid.UUID
		)
		err := tx.QueryRowContext(ctx, query, transferID).Scan(&reversed, &amount, &fromAccountID, &toAccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", domain.ErrTransferNotFound, transferID)
		}
		if err != nil {
			return fmt.Errorf("failed to load account transfer %s: %w", transferID, err)
		}

		if reversed {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE account_transfers SET is_reversed = true WHERE id = $1`, transferID); err != nil {
			return fmt.Errorf("failed to mark account transfer reversed: %w", err)
		}

		if err := adjustBalance(ctx, tx, fromAccountID, amount); err != nil {
			return err
		}
		return adjustBalance(ctx, tx, toAccountID, amount.Neg())
	})
}

func lockAccount(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*accountRow, error) {
	query := `
		SELECT id, status, balance, currency_code
		FROM accounts
		WHERE id = $1 AND kind = 'SAVINGS'
		FOR UPDATE
	`

	var account accountRow
	err := tx.QueryRowContext(ctx, query, id).Scan(&account.id, &account.status, &account.balance, &account.currency)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func adjustBalance(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, delta decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE id = $2`, delta, accountID)
	if err != nil {
		return fmt.Errorf("failed to adjust balance of account %s: %w", accountID, err)
	}
	return nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, entryType string, req domain.TransferRequest) (uuid.UUID, error) {
	entryID := uuid.New()
	query := `
		INSERT INTO account_entries (id, account_id, entry_type, amount, transaction_date, description, is_regular)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.ExecContext(ctx, query,
		entryID, accountID, entryType, req.Amount, req.Date, req.Description, req.IsRegularTransaction)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert %s entry: %w", entryType, err)
	}
	return entryID, nil
}

func classifyAccountError(err error, side string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewTransferError(domain.TransferFailureValidation,
			fmt.Sprintf("%s account %s does not exist or is not a savings account", side, id), nil)
	}
	return classifyInfraError(err)
}

// classifyInfraError maps database-level failures onto the transfer failure
// taxonomy: connectivity problems are service-unavailable, everything else
// is unclassified.
func classifyInfraError(err error) error {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return domain.NewTransferError(domain.TransferFailureServiceUnavailable,
			"transfer datastore unavailable", err)
	}
	return domain.NewTransferError(domain.TransferFailureUnclassified, err.Error(), err)
}
