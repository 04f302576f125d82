package model

import "fmt"

// Identity is the registered-user-or-guest union used across messages,
// chat members and join requests. Exactly one of UserID or GuestName is
// set; the constructors are the only intended way to build one.
type Identity struct {
	UserID    string `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	GuestName string `gorm:"type:varchar(255)" json:"guest_name,omitempty"`
}

func UserIdentity(userID string) Identity {
	return Identity{UserID: userID}
}

func GuestIdentity(name string) Identity {
	return Identity{GuestName: name}
}

func (i Identity) IsUser() bool {
	return i.UserID != ""
}

func (i Identity) IsGuest() bool {
	return i.UserID == "" && i.GuestName != ""
}

// Valid reports whether exactly one side of the union is populated.
func (i Identity) Valid() bool {
	return (i.UserID != "") != (i.GuestName != "")
}

// ParticipantID is the stable key used in receipt rows and realtime
// payloads. Guests are prefixed so a guest named like a user ID can
// never collide with that user.
func (i Identity) ParticipantID() string {
	if i.IsUser() {
		return i.UserID
	}
	return "guest:" + i.GuestName
}

func (i Identity) String() string {
	if i.IsUser() {
		return fmt.Sprintf("user(%s)", i.UserID)
	}
	return fmt.Sprintf("guest(%s)", i.GuestName)
}
