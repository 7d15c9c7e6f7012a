//go:generate go run go.uber.org/mock/mockgen -source=identity.go -destination=../mocks/mock_identity_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

type IIdentityRepository interface {
	// Insert persists a new identity. Returns ErrConflict when the contact
	// address is already taken, so the caller can re-read the winner.
	Insert(identity domain.Identity) error
	GetByAddress(contactAddress string) (domain.Identity, error)
	GetByID(id uuid.UUID) (domain.Identity, error)
	TouchLastSeen(id uuid.UUID, at time.Time) error
}

type IdentityRepository struct {
	db *badger.DB
}

func NewIdentityRepository(db *badger.DB) IIdentityRepository {
	return &IdentityRepository{db: db}
}

// Two keys per identity: the address key is the uniqueness constraint and a
// secondary index (value = identity id), the id key holds the document.
func identityAddrKey(contactAddress string) []byte {
	return []byte(fmt.Sprintf("identity:addr:%s", contactAddress))
}

func identityIDKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("identity:id:%s", id))
}

func (r *IdentityRepository) Insert(identity domain.Identity) error {
	data, err := encode(fromIdentity(identity))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		addrKey := identityAddrKey(identity.ContactAddress)
		if _, err := txn.Get(addrKey); err == nil {
			return fmt.Errorf("%w: contact address %q", apperrors.ErrConflict, identity.ContactAddress)
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set(addrKey, []byte(identity.ID.String())); err != nil {
			return err
		}
		return txn.Set(identityIDKey(identity.ID), data)
	})
	// A commit-time abort means another transaction won the address key in
	// the meantime: same signal as the explicit presence check.
	if err == badger.ErrConflict {
		return fmt.Errorf("%w: contact address %q", apperrors.ErrConflict, identity.ContactAddress)
	}
	return err
}

func (r *IdentityRepository) GetByAddress(contactAddress string) (domain.Identity, error) {
	var identity domain.Identity
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(identityAddrKey(contactAddress))
		if err != nil {
			return err
		}
		var id uuid.UUID
		if err := item.Value(func(val []byte) error {
			id, err = uuid.Parse(string(val))
			return err
		}); err != nil {
			return err
		}
		identity, err = getIdentity(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.Identity{}, fmt.Errorf("%w: identity with address %q", apperrors.ErrNotFound, contactAddress)
	}
	return identity, err
}

func (r *IdentityRepository) GetByID(id uuid.UUID) (domain.Identity, error) {
	var identity domain.Identity
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		identity, err = getIdentity(txn, id)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return domain.Identity{}, fmt.Errorf("%w: identity %s", apperrors.ErrNotFound, id)
	}
	return identity, err
}

// TouchLastSeen stamps the identity's last-seen time, typically when one of
// its connections closes.
func (r *IdentityRepository) TouchLastSeen(id uuid.UUID, at time.Time) error {
	err := updateWithRetry(r.db, func(txn *badger.Txn) error {
		identity, err := getIdentity(txn, id)
		if err != nil {
			return err
		}
		identity.LastSeenAt = at
		data, err := encode(fromIdentity(identity))
		if err != nil {
			return fmt.Errorf("marshal failed: %w", err)
		}
		return txn.Set(identityIDKey(id), data)
	})
	if err == badger.ErrKeyNotFound {
		return fmt.Errorf("%w: identity %s", apperrors.ErrNotFound, id)
	}
	return err
}

func getIdentity(txn *badger.Txn, id uuid.UUID) (domain.Identity, error) {
	item, err := txn.Get(identityIDKey(id))
	if err != nil {
		return domain.Identity{}, err
	}
	var stored storedIdentity
	if err := item.Value(func(val []byte) error {
		return decode(val, &stored)
	}); err != nil {
		return domain.Identity{}, err
	}
	return toIdentity(stored), nil
}
