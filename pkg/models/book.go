package models

import (
	"github.com/uptrace/bun"
)

// DefaultLanguage is applied when a book is created without one. The
// collection is predominantly Russian.
const DefaultLanguage = "Русский"

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              int     `bun:"book_id,pk" json:"book_id"`
	Title           string  `bun:"title,nullzero" json:"title"`
	ISBN            *string `bun:"isbn" json:"isbn"`
	PublicationYear *int    `bun:"publication_year" json:"publication_year"`
	Publisher       *string `bun:"publisher" json:"publisher"`
	Pages           *int    `bun:"pages" json:"pages"`
	Language        string  `bun:"language" json:"language"`
	Description     *string `bun:"description" json:"description"`

	// Relations
	Authors []*Author   `bun:"m2m:book_authors,join:Book=Author" json:"authors,omitempty"`
	Genres  []*Genre    `bun:"m2m:book_genres,join:Book=Genre" json:"genres,omitempty"`
	Copies  []*BookCopy `bun:"rel:has-many,join:book_id=book_id" json:"copies,omitempty"`

	AvailableCopies int `bun:",scanonly" json:"available_copies"`
}
