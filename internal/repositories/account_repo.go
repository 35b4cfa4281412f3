package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/accountsvc/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrLoginTaken is returned when a write would duplicate an existing login
	ErrLoginTaken = errors.New("login already exists")
	// ErrVersionConflict is returned when optimistic locking fails
	ErrVersionConflict = errors.New("version conflict: account was modified concurrently")
)

const uniqueViolation = "23505"

const accountColumns = `id, login, password_hash, name, gender, birth_day, admin,
	created_on, created_by, modified_on, modified_by, revoked_on, revoked_by, version`

type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

func (r *PostgresAccountRepository) FindByLogin(ctx context.Context, login string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE login = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, login))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *PostgresAccountRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE login = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, login).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check login: %w", err)
	}
	return exists, nil
}

func (r *PostgresAccountRepository) Insert(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (id, login, password_hash, name, gender, birth_day, admin,
	              created_on, created_by, modified_on, modified_by, revoked_on, revoked_by, version)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1)
	          RETURNING version`

	err := r.pool.QueryRow(ctx, query,
		account.ID,
		account.Login,
		account.PasswordHash,
		account.Name,
		int16(account.Gender),
		account.BirthDay,
		account.Admin,
		account.CreatedOn,
		account.CreatedBy,
		account.ModifiedOn,
		account.ModifiedBy,
		account.RevokedOn,
		account.RevokedBy,
	).Scan(&account.Version)

	if isUniqueViolation(err) {
		return ErrLoginTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// Update writes the full record if the stored version still matches the one
// the caller read. Admin and creation fields are never rewritten.
func (r *PostgresAccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `UPDATE accounts
	          SET login = $1,
	              password_hash = $2,
	              name = $3,
	              gender = $4,
	              birth_day = $5,
	              modified_on = $6,
	              modified_by = $7,
	              revoked_on = $8,
	              revoked_by = $9,
	              version = version + 1
	          WHERE id = $10 AND version = $11
	          RETURNING version`

	var newVersion int64
	err := r.pool.QueryRow(ctx, query,
		account.Login,
		account.PasswordHash,
		account.Name,
		int16(account.Gender),
		account.BirthDay,
		account.ModifiedOn,
		account.ModifiedBy,
		account.RevokedOn,
		account.RevokedBy,
		account.ID,
		account.Version,
	).Scan(&newVersion)

	if isUniqueViolation(err) {
		return ErrLoginTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missingOrConflict(ctx, account)
	}
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	account.Version = newVersion
	return nil
}

func (r *PostgresAccountRepository) missingOrConflict(ctx context.Context, account *models.Account) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, account.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (r *PostgresAccountRepository) ListActive(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + `
	          FROM accounts
	          WHERE revoked_on IS NULL
	          ORDER BY created_on ASC`

	return r.list(ctx, query)
}

func (r *PostgresAccountRepository) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + `
	          FROM accounts
	          WHERE birth_day IS NOT NULL AND birth_day <= $1
	          ORDER BY created_on ASC`

	return r.list(ctx, query, cutoff)
}

func (r *PostgresAccountRepository) list(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var (
		account models.Account
		gender  int16
	)
	err := row.Scan(
		&account.ID,
		&account.Login,
		&account.PasswordHash,
		&account.Name,
		&gender,
		&account.BirthDay,
		&account.Admin,
		&account.CreatedOn,
		&account.CreatedBy,
		&account.ModifiedOn,
		&account.ModifiedBy,
		&account.RevokedOn,
		&account.RevokedBy,
		&account.Version,
	)
	if err != nil {
		return nil, err
	}
	account.Gender = models.Gender(gender)
	return &account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
