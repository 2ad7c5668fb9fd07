package http

import (
	"time"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type NewLocker struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Size  string `json:"size"`
}

type Locker struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	Size   string `json:"size"`
	Status string `json:"status"`
}

type LockerStatusChange struct {
	Status string `json:"status"`
	Admin  string `json:"admin"`
}

type NewParcel struct {
	Size      string `json:"size"`
	Recipient string `json:"recipient"`
	// Delivery is "pin" (default) or "token".
	Delivery string `json:"delivery"`
}

type DepositedParcel struct {
	ParcelID    string     `json:"parcel_id"`
	LockerID    int        `json:"locker_id"`
	LockerLabel string     `json:"locker_label"`
	LockerSize  string     `json:"locker_size"`
	DepositedAt time.Time  `json:"deposited_at"`
	PINExpiry   *time.Time `json:"pin_expiry,omitempty"`
	TokenExpiry *time.Time `json:"token_expiry,omitempty"`
	Notified    bool       `json:"notified"`
}

type Parcel struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	Size            string     `json:"size"`
	LockerID        *int       `json:"locker_id,omitempty"`
	LockerLabel     string     `json:"locker_label,omitempty"`
	DepositedAt     time.Time  `json:"deposited_at"`
	PickedUpAt      *time.Time `json:"picked_up_at,omitempty"`
	ReminderSentAt  *time.Time `json:"reminder_sent_at,omitempty"`
	CredentialState string     `json:"credential_state"`
	PINExpiry       *time.Time `json:"pin_expiry,omitempty"`
	PINExpired      bool       `json:"pin_expired"`
	TokenExpiry     *time.Time `json:"token_expiry,omitempty"`
}

type PickUp struct {
	PIN string `json:"pin"`
}

type PickedUp struct {
	LockerID    int    `json:"locker_id"`
	LockerLabel string `json:"locker_label"`
}

// Claim carries the recipient identifier for dispute and regeneration requests.
type Claim struct {
	Identifier string `json:"identifier"`
}

type MissingReport struct {
	ReportedBy string `json:"reported_by"`
}

type AdminAction struct {
	Admin string `json:"admin"`
}

type Redeem struct {
	Token string `json:"token"`
}

type Regenerated struct {
	Expiry   time.Time `json:"expiry"`
	Notified bool      `json:"notified"`
}

type RedeemedPIN struct {
	PIN    string    `json:"pin"`
	Expiry time.Time `json:"expiry"`
}
