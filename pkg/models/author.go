package models

import (
	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        int     `bun:"author_id,pk" json:"author_id"`
	FirstName string  `bun:"first_name" json:"first_name"`
	LastName  string  `bun:"last_name" json:"last_name"`
	BirthYear *int    `bun:"birth_year" json:"birth_year"`
	DeathYear *int    `bun:"death_year" json:"death_year"`
	Bio       *string `bun:"bio" json:"bio"`
}

type BookAuthor struct {
	bun.BaseModel `bun:"table:book_authors,alias:ba"`

	BookID   int     `bun:"book_id,pk" json:"book_id"`
	AuthorID int     `bun:"author_id,pk" json:"author_id"`
	Book     *Book   `bun:"rel:belongs-to,join:book_id=book_id" json:"-"`
	Author   *Author `bun:"rel:belongs-to,join:author_id=author_id" json:"-"`
}
