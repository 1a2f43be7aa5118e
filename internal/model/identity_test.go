package model

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestIdentityKeyRegistered(t *testing.T) {
	id := uuid.New()
	key := RegisteredIdentity(id).Key()
	if key != "u:"+id.String() {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestGuestKeyNormalizesPhone(t *testing.T) {
	variants := []string{
		"+49 170 1234567",
		"+49-170-1234567",
		"+49 (170) 123.4567",
		"+491701234567",
	}
	base := GuestIdentity("Alex", variants[0], "").Key()
	for _, v := range variants[1:] {
		if got := GuestIdentity("Alex", v, "").Key(); got != base {
			t.Fatalf("formatting variant %q produced a different key", v)
		}
	}
	if other := GuestIdentity("Alex", "+491701234568", "").Key(); other == base {
		t.Fatalf("different numbers must not collide")
	}
}

func TestGuestKeyPrefersPhoneOverEmail(t *testing.T) {
	withBoth := GuestIdentity("Sam", "+4915551234", "sam@example.com").Key()
	phoneOnly := GuestIdentity("Sam", "+4915551234", "").Key()
	emailOnly := GuestIdentity("Sam", "", "sam@example.com").Key()

	if withBoth != phoneOnly {
		t.Fatalf("phone must drive the key when both contacts are present")
	}
	if withBoth == emailOnly {
		t.Fatalf("email fallback must not collide with the phone key")
	}
	upper := GuestIdentity("Sam", "", "SAM@Example.com").Key()
	if upper != emailOnly {
		t.Fatalf("email keys must be case-insensitive")
	}
}

func TestGuestKeyCarriesNoContactData(t *testing.T) {
	key := GuestIdentity("Sam", "+4915551234", "").Key()
	if !strings.HasPrefix(key, "g:") {
		t.Fatalf("guest key must be namespaced, got %q", key)
	}
	if strings.Contains(key, "1555") {
		t.Fatalf("raw contact data leaked into key %q", key)
	}
}

func TestIdentityValid(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		want     bool
	}{
		{"registered", RegisteredIdentity(uuid.New()), true},
		{"registered nil id", RegisteredIdentity(uuid.Nil), false},
		{"guest with phone", GuestIdentity("Alex", "+4917012345", ""), true},
		{"guest with email", GuestIdentity("Alex", "", "alex@example.com"), true},
		{"guest no contact", GuestIdentity("Alex", "", ""), false},
		{"guest no name", GuestIdentity("  ", "+4917012345", ""), false},
		{"zero value", Identity{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.identity.Valid(); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
