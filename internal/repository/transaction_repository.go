package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/xbank/transaction-service/internal/models"
)

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("transaction not found")

const transactionColumns = `id, owner, account, to_account, amount, currency, action, transact_at, result, error, created_by, last_modified_by`

// TransactionRepository persists transaction records in PostgreSQL. The
// table is the single source of truth; nothing is cached across calls.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Insert writes a new row and assigns the generated id to t.
func (r *TransactionRepository) Insert(t *models.Transaction) error {
	query := `
		INSERT INTO transactions (owner, account, to_account, amount, currency, action, transact_at, result, error, created_by, last_modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.db.QueryRow(query,
		t.Owner, t.Account, t.ToAccount, t.Amount, t.Currency,
		t.Action, t.TransactAt, t.Result, t.Error,
		t.CreatedBy, t.LastModifiedBy,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// Update replaces every column of the row identified by t.ID.
func (r *TransactionRepository) Update(t *models.Transaction) error {
	query := `
		UPDATE transactions
		SET owner = $2, account = $3, to_account = $4, amount = $5, currency = $6,
		    action = $7, transact_at = $8, result = $9, error = $10,
		    created_by = $11, last_modified_by = $12
		WHERE id = $1
	`
	_, err := r.db.Exec(query,
		t.ID, t.Owner, t.Account, t.ToAccount, t.Amount, t.Currency,
		t.Action, t.TransactAt, t.Result, t.Error,
		t.CreatedBy, t.LastModifiedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) FindByID(id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	var t models.Transaction
	err := r.db.QueryRow(query, id).Scan(
		&t.ID, &t.Owner, &t.Account, &t.ToAccount, &t.Amount, &t.Currency,
		&t.Action, &t.TransactAt, &t.Result, &t.Error,
		&t.CreatedBy, &t.LastModifiedBy,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &t, nil
}

func (r *TransactionRepository) Delete(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// Count returns the total number of rows in the table.
func (r *TransactionRepository) Count() (int64, error) {
	var total int64
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}

// FindPage returns one page of rows ordered by id. A page index past the
// end of the table yields an empty slice.
func (r *TransactionRepository) FindPage(page, size int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, size, page*size)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(
			&t.ID, &t.Owner, &t.Account, &t.ToAccount, &t.Amount, &t.Currency,
			&t.Action, &t.TransactAt, &t.Result, &t.Error,
			&t.CreatedBy, &t.LastModifiedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return result, nil
}
