package books

type listBooksQuery struct {
	Search   *string `json:"search" query:"search"`
	GenreID  *int    `json:"genre" query:"genre"`
	AuthorID *int    `json:"author" query:"author"`
}

// bookPayload mirrors the admin book form. Year and pages arrive as text
// and are parsed leniently: anything non-numeric becomes null.
type bookPayload struct {
	Title           string `json:"title" form:"title" mod:"trim" validate:"required,max=200"`
	ISBN            string `json:"isbn" form:"isbn" mod:"trim" validate:"max=20"`
	PublicationYear string `json:"publication_year" form:"publication_year" mod:"trim"`
	Publisher       string `json:"publisher" form:"publisher" mod:"trim" validate:"max=200"`
	Pages           string `json:"pages" form:"pages" mod:"trim"`
	Language        string `json:"language" form:"language" mod:"trim" validate:"max=50"`
	Description     string `json:"description" form:"description" mod:"trim"`
	AuthorsText     string `json:"authors_text" form:"authors_text"`
	GenresText      string `json:"genres_text" form:"genres_text"`
}
