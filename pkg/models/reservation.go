package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Reservation statuses. A reservation is "open" while reserved or
// issued; open reservations count against the user's borrowing cap.
const (
	ReservationReserved  = "reserved"
	ReservationIssued    = "issued"
	ReservationReturned  = "returned"
	ReservationCancelled = "cancelled"
)

// IsValidReservationStatus reports whether s is one of the four
// reservation statuses.
func IsValidReservationStatus(s string) bool {
	switch s {
	case ReservationReserved, ReservationIssued, ReservationReturned, ReservationCancelled:
		return true
	}
	return false
}

// Reservation rows are never deleted. Their practical identity is the
// triple (copy_id, username, reservation_date): the serial id exists
// only because the schema wants a primary key.
type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:r"`

	ID              int        `bun:"reservation_id,pk,autoincrement" json:"reservation_id"`
	CopyID          int        `bun:"copy_id" json:"copy_id"`
	Username        string     `bun:"username,nullzero" json:"username"`
	ReservationDate time.Time  `bun:"reservation_date" json:"reservation_date"`
	PickupDeadline  *time.Time `bun:"pickup_deadline" json:"pickup_deadline"`
	DueDate         time.Time  `bun:"due_date" json:"due_date"`
	Status          string     `bun:"status,nullzero" json:"status"`

	Copy *BookCopy `bun:"rel:belongs-to,join:copy_id=copy_id" json:"copy,omitempty"`
	User *User     `bun:"rel:belongs-to,join:username=username" json:"user,omitempty"`
}

// Open reports whether the reservation still holds its copy.
func (r *Reservation) Open() bool {
	return r.Status == ReservationReserved || r.Status == ReservationIssued
}
