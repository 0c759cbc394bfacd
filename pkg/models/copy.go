package models

import (
	"github.com/uptrace/bun"
)

// Physical condition of a copy.
const (
	ConditionNew  = "new"
	ConditionGood = "good"
	ConditionFair = "fair"
	ConditionPoor = "poor"
)

// Copy statuses. A copy's status must agree with the latest reservation
// referencing it; the reservation service maintains that invariant.
const (
	CopyAvailable = "available"
	CopyReserved  = "reserved"
	CopyIssued    = "issued"
	CopyLost      = "lost"
)

type BookCopy struct {
	bun.BaseModel `bun:"table:book_copies,alias:bc"`

	ID              int     `bun:"copy_id,pk" json:"copy_id"`
	BookID          int     `bun:"book_id" json:"book_id"`
	InventoryNumber string  `bun:"inventory_number,nullzero" json:"inventory_number"`
	Condition       string  `bun:"condition" json:"condition"`
	Status          string  `bun:"status,nullzero" json:"status"`
	Location        *string `bun:"location" json:"location"`

	Book *Book `bun:"rel:belongs-to,join:book_id=book_id" json:"book,omitempty"`
}
