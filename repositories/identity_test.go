package repositories

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Identity_Insert_And_Get(t *testing.T) {
	req := require.New(t)
	repository := NewIdentityRepository(openTestDB(t))

	identity := domain.Identity{
		ID:             uuid.New(),
		DisplayName:    "Alice",
		ContactAddress: "+1111",
		AvatarRef:      "https://example.com/alice.png",
		LastSeenAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
	req.NoError(repository.Insert(identity))

	byAddress, err := repository.GetByAddress("+1111")
	req.NoError(err)
	req.Equal(identity.ID, byAddress.ID)
	req.Equal("Alice", byAddress.DisplayName)

	byID, err := repository.GetByID(identity.ID)
	req.NoError(err)
	req.Equal("+1111", byID.ContactAddress)
}

func Test_Identity_Insert_DuplicateAddress_Conflicts(t *testing.T) {
	req := require.New(t)
	repository := NewIdentityRepository(openTestDB(t))

	first := domain.Identity{ID: uuid.New(), DisplayName: "Alice", ContactAddress: "+1111"}
	req.NoError(repository.Insert(first))

	second := domain.Identity{ID: uuid.New(), DisplayName: "Impostor", ContactAddress: "+1111"}
	err := repository.Insert(second)
	req.ErrorIs(err, apperrors.ErrConflict)

	// The winner is untouched.
	winner, err := repository.GetByAddress("+1111")
	req.NoError(err)
	req.Equal(first.ID, winner.ID)
}

func Test_Identity_Get_Unknown_NotFound(t *testing.T) {
	req := require.New(t)
	repository := NewIdentityRepository(openTestDB(t))

	_, err := repository.GetByAddress("+0000")
	req.ErrorIs(err, apperrors.ErrNotFound)

	_, err = repository.GetByID(uuid.New())
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func Test_Identity_TouchLastSeen(t *testing.T) {
	req := require.New(t)
	repository := NewIdentityRepository(openTestDB(t))

	identity := domain.Identity{ID: uuid.New(), DisplayName: "Alice", ContactAddress: "+1111"}
	req.NoError(repository.Insert(identity))

	seen := time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
	req.NoError(repository.TouchLastSeen(identity.ID, seen))

	updated, err := repository.GetByID(identity.ID)
	req.NoError(err)
	req.True(updated.LastSeenAt.Equal(seen))

	req.ErrorIs(repository.TouchLastSeen(uuid.New(), seen), apperrors.ErrNotFound)
}
