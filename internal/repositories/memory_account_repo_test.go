package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/accountsvc/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(login string, createdOn time.Time) *models.Account {
	return &models.Account{
		ID:           uuid.New(),
		Login:        login,
		PasswordHash: "test-hash",
		Name:         "Test",
		Gender:       models.GenderUnknown,
		CreatedOn:    createdOn,
		CreatedBy:    "System",
	}
}

// TestMemoryAccountRepository_InsertAndFind tests the basic write/read path
func TestMemoryAccountRepository_InsertAndFind(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	account := newTestAccount("alice", time.Now())
	require.NoError(t, repo.Insert(ctx, account))
	assert.Equal(t, int64(1), account.Version)

	found, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	exists, err := repo.ExistsByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestMemoryAccountRepository_ReturnsCopies makes sure callers cannot mutate stored state
func TestMemoryAccountRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newTestAccount("alice", time.Now())))

	found, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	found.Name = "Mallory"

	again, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Test", again.Name)
}

// TestMemoryAccountRepository_InsertDuplicateLogin tests uniqueness at write time
func TestMemoryAccountRepository_InsertDuplicateLogin(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newTestAccount("alice", time.Now())))
	err := repo.Insert(ctx, newTestAccount("alice", time.Now()))

	assert.ErrorIs(t, err, ErrLoginTaken)
}

// TestMemoryAccountRepository_ConcurrentInsertSameLogin races inserts for one login
func TestMemoryAccountRepository_ConcurrentInsertSameLogin(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Insert(ctx, newTestAccount("alice", time.Now())); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one insert should win")
}

// TestMemoryAccountRepository_UpdateVersionConflict tests optimistic locking
func TestMemoryAccountRepository_UpdateVersionConflict(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newTestAccount("alice", time.Now())))

	first, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	second, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)

	first.Name = "First"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	// ACT: second writer still holds version 1
	second.Name = "Second"
	err = repo.Update(ctx, second)

	// ASSERT: stale write rejected, first write kept
	assert.ErrorIs(t, err, ErrVersionConflict)
	stored, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "First", stored.Name)
}

// TestMemoryAccountRepository_RenameIntoTakenLogin tests uniqueness on rename
func TestMemoryAccountRepository_RenameIntoTakenLogin(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newTestAccount("alice", time.Now())))
	require.NoError(t, repo.Insert(ctx, newTestAccount("bob", time.Now())))

	alice, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	alice.Login = "bob"

	assert.ErrorIs(t, repo.Update(ctx, alice), ErrLoginTaken)

	stillAlice, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stillAlice.ID)
}

// TestMemoryAccountRepository_RenameFreesOldLogin tests the login index is moved
func TestMemoryAccountRepository_RenameFreesOldLogin(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newTestAccount("alice", time.Now())))

	alice, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	alice.Login = "carol"
	require.NoError(t, repo.Update(ctx, alice))

	_, err = repo.FindByLogin(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	carol, err := repo.FindByLogin(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, carol.ID)
}

// TestMemoryAccountRepository_UpdateCannotChangeAdmin tests the admin flag is immutable
func TestMemoryAccountRepository_UpdateCannotChangeAdmin(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newTestAccount("alice", time.Now())))

	alice, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	alice.Admin = true
	require.NoError(t, repo.Update(ctx, alice))

	stored, err := repo.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, stored.Admin)
}

// TestMemoryAccountRepository_ListActiveOrdered tests filtering and ordering
func TestMemoryAccountRepository_ListActiveOrdered(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, newTestAccount("third", base.Add(2*time.Hour))))
	require.NoError(t, repo.Insert(ctx, newTestAccount("first", base)))
	revoked := newTestAccount("revoked", base.Add(time.Hour))
	revoked.Revoke("Admin", base)
	require.NoError(t, repo.Insert(ctx, revoked))

	accounts, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "first", accounts[0].Login)
	assert.Equal(t, "third", accounts[1].Login)
}

// TestMemoryAccountRepository_ListOlderThan tests the birthday cutoff
func TestMemoryAccountRepository_ListOlderThan(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()
	cutoff := time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC)

	onCutoff := newTestAccount("oncutoff", time.Now())
	onCutoff.BirthDay = &cutoff
	younger := newTestAccount("younger", time.Now())
	later := cutoff.AddDate(0, 0, 1)
	younger.BirthDay = &later
	unknown := newTestAccount("unknown", time.Now())

	for _, a := range []*models.Account{onCutoff, younger, unknown} {
		require.NoError(t, repo.Insert(ctx, a))
	}

	accounts, err := repo.ListOlderThan(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "oncutoff", accounts[0].Login)
}
