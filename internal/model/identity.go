package model

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

type IdentityKind string

const (
	IdentityKindRegistered IdentityKind = "registered"
	IdentityKindGuest      IdentityKind = "guest"
)

// Identity is the tagged union of the two participant kinds. A registered
// identity carries only the account id; a guest identity carries the contact
// tuple collected at join time.
type Identity struct {
	Kind IdentityKind

	// Registered
	UserID uuid.UUID

	// Guest
	GuestName  string
	GuestPhone string
	GuestEmail string
}

func RegisteredIdentity(userID uuid.UUID) Identity {
	return Identity{Kind: IdentityKindRegistered, UserID: userID}
}

func GuestIdentity(name, phone, email string) Identity {
	return Identity{
		Kind:       IdentityKindGuest,
		GuestName:  strings.TrimSpace(name),
		GuestPhone: normalizePhone(phone),
		GuestEmail: strings.ToLower(strings.TrimSpace(email)),
	}
}

func (i Identity) IsRegistered() bool { return i.Kind == IdentityKindRegistered }

// Valid reports whether the identity is complete enough to join a session.
// Guests need a name and at least one contact point (phone preferred).
func (i Identity) Valid() bool {
	switch i.Kind {
	case IdentityKindRegistered:
		return i.UserID != uuid.Nil
	case IdentityKindGuest:
		return i.GuestName != "" && (i.GuestPhone != "" || i.GuestEmail != "")
	}
	return false
}

// Key returns the per-session dedup key. Registered identities key on the
// account id. Guests key on phone, falling back to email when no phone was
// given; the contact value is digested so the ledger index never carries raw
// contact data.
func (i Identity) Key() string {
	if i.Kind == IdentityKindRegistered {
		return "u:" + i.UserID.String()
	}
	contact := i.GuestPhone
	if contact == "" {
		contact = i.GuestEmail
	}
	sum := blake2b.Sum256([]byte("guest:" + contact))
	return "g:" + hex.EncodeToString(sum[:16])
}

// normalizePhone strips separators commonly typed into phone numbers so the
// same number always yields the same dedup key.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
