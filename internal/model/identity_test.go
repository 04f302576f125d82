package model

import "testing"

func TestIdentityUnion(t *testing.T) {
	user := UserIdentity("u1")
	if !user.IsUser() || user.IsGuest() {
		t.Errorf("UserIdentity misclassified: %v", user)
	}
	if !user.Valid() {
		t.Error("user identity should be valid")
	}

	guest := GuestIdentity("Dana")
	if guest.IsUser() || !guest.IsGuest() {
		t.Errorf("GuestIdentity misclassified: %v", guest)
	}
	if !guest.Valid() {
		t.Error("guest identity should be valid")
	}
}

func TestIdentityValid_ExactlyOneSide(t *testing.T) {
	cases := []struct {
		name  string
		id    Identity
		valid bool
	}{
		{"empty", Identity{}, false},
		{"both set", Identity{UserID: "u1", GuestName: "Dana"}, false},
		{"user only", Identity{UserID: "u1"}, true},
		{"guest only", Identity{GuestName: "Dana"}, true},
	}
	for _, tc := range cases {
		if got := tc.id.Valid(); got != tc.valid {
			t.Errorf("%s: Valid() = %v, want %v", tc.name, got, tc.valid)
		}
	}
}

func TestParticipantID_GuestNeverCollidesWithUser(t *testing.T) {
	user := UserIdentity("alice")
	// A guest who picked a display name equal to a user ID.
	guest := GuestIdentity("alice")

	if user.ParticipantID() == guest.ParticipantID() {
		t.Errorf("participant IDs collide: %q", user.ParticipantID())
	}
	if guest.ParticipantID() != "guest:alice" {
		t.Errorf("unexpected guest participant ID: %q", guest.ParticipantID())
	}
}
