// Package domain contains core concepts of the messaging relay.
// This file defines Identity records and the rules for implicit creation.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Identity is a registered participant, keyed by a unique contact address.
type Identity struct {
	ID             uuid.UUID
	DisplayName    string
	ContactAddress string
	AvatarRef      string
	LastSeenAt     time.Time
}

// PlaceholderName derives the display name for an identity created
// implicitly, before its owner ever joined. Deterministic per address.
func PlaceholderName(contactAddress string) string {
	return fmt.Sprintf("User %s", contactAddress)
}

// PlaceholderAvatar derives an avatar reference from the contact address.
func PlaceholderAvatar(contactAddress string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=25D366&color=fff",
		url.QueryEscape(contactAddress))
}
