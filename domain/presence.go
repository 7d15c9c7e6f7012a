package domain

import "github.com/google/uuid"

// PresenceEntry binds one live connection to one identity. Entries exist only
// for the lifetime of the connection and are never persisted. Several entries
// may point at the same identity when it is connected from multiple devices.
type PresenceEntry struct {
	ConnectionID   string
	IdentityID     uuid.UUID
	ContactAddress string
	DisplayName    string
}
