package models

import (
	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID          int     `bun:"genre_id,pk" json:"genre_id"`
	Name        string  `bun:"name,nullzero" json:"name"`
	Description *string `bun:"description" json:"description"`
	ParentID    *int    `bun:"parent_id" json:"parent_id"`
	BookCount   int     `bun:",scanonly" json:"book_count,omitempty"`
}

type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg"`

	BookID  int    `bun:"book_id,pk" json:"book_id"`
	GenreID int    `bun:"genre_id,pk" json:"genre_id"`
	Book    *Book  `bun:"rel:belongs-to,join:book_id=book_id" json:"-"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=genre_id" json:"-"`
}
