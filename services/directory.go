package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
	"chat-relay/repositories"
)

// IDirectoryService resolves external contact addresses to identities.
type IDirectoryService interface {
	// ResolveOrCreate looks the address up and creates the identity on first
	// sight. Empty displayName/avatarRef select deterministic placeholders
	// derived from the address (implicit creation during conversation start).
	// Safe under concurrent calls with the same address: a creation race is
	// resolved by re-reading the winning record.
	ResolveOrCreate(ctx context.Context, contactAddress, displayName, avatarRef string) (domain.Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Identity, error)
	GetByAddress(ctx context.Context, contactAddress string) (domain.Identity, error)
	TouchLastSeen(ctx context.Context, id uuid.UUID) error
}

type DirectoryService struct {
	identities repositories.IIdentityRepository
	log        *slog.Logger
}

func NewDirectoryService(log *slog.Logger, identities repositories.IIdentityRepository) IDirectoryService {
	return &DirectoryService{identities: identities, log: log}
}

func (s *DirectoryService) ResolveOrCreate(_ context.Context, contactAddress, displayName, avatarRef string) (domain.Identity, error) {
	identity, err := s.identities.GetByAddress(contactAddress)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.Identity{}, err
	}

	if displayName == "" {
		displayName = domain.PlaceholderName(contactAddress)
	}
	if avatarRef == "" {
		avatarRef = domain.PlaceholderAvatar(contactAddress)
	}
	candidate := domain.Identity{
		ID:             uuid.New(),
		DisplayName:    displayName,
		ContactAddress: contactAddress,
		AvatarRef:      avatarRef,
		LastSeenAt:     time.Now().UTC(),
	}

	err = s.identities.Insert(candidate)
	switch {
	case err == nil:
		s.log.Info("identity created",
			"identity_id", candidate.ID,
			"contact_address", contactAddress)
		return candidate, nil
	case errors.Is(err, apperrors.ErrConflict):
		// Lost the creation race; the record that won the unique constraint
		// is authoritative.
		s.log.Debug("identity creation raced, re-reading", "contact_address", contactAddress)
		return s.identities.GetByAddress(contactAddress)
	default:
		return domain.Identity{}, err
	}
}

func (s *DirectoryService) GetByID(_ context.Context, id uuid.UUID) (domain.Identity, error) {
	return s.identities.GetByID(id)
}

func (s *DirectoryService) GetByAddress(_ context.Context, contactAddress string) (domain.Identity, error) {
	return s.identities.GetByAddress(contactAddress)
}

func (s *DirectoryService) TouchLastSeen(_ context.Context, id uuid.UUID) error {
	return s.identities.TouchLastSeen(id, time.Now().UTC())
}
