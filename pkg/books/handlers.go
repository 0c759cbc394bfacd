package books

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/booknest/booknest/pkg/assets"
	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *Service
	imagesDir   string
}

type bookResponse struct {
	*models.Book
	CoverImage string `json:"cover_image,omitempty"`
}

func (h *handler) wrap(book *models.Book) *bookResponse {
	resp := &bookResponse{Book: book}
	if cover := assets.FindCover(h.imagesDir, book.Title); cover != "" {
		resp.CoverImage = "/images/" + cover
	}
	return resp
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := listBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.ListBooks(ctx, ListBooksOptions(params))
	if err != nil {
		return err
	}

	authors, err := h.bookService.ListAuthors(ctx)
	if err != nil {
		return err
	}

	genres, err := h.bookService.ListGenres(ctx)
	if err != nil {
		return err
	}

	wrapped := make([]*bookResponse, 0, len(books))
	for _, book := range books {
		wrapped = append(wrapped, h.wrap(book))
	}

	resp := struct {
		Books   []*bookResponse  `json:"books"`
		Authors []*models.Author `json:"authors"`
		Genres  []*models.Genre  `json:"genres"`
	}{wrapped, authors, genres}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.wrap(book))
}

func (h *handler) addForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"book":         nil,
		"authors_text": "",
		"genres_text":  "",
	})
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := bookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.CreateBook(ctx, optionsFromPayload(params))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, h.wrap(book))
}

func (h *handler) editForm(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return err
	}

	authorLines := make([]string, 0, len(book.Authors))
	for _, a := range book.Authors {
		authorLines = append(authorLines, a.FirstName+" "+a.LastName)
	}
	genreLines := make([]string, 0, len(book.Genres))
	for _, g := range book.Genres {
		genreLines = append(genreLines, g.Name)
	}

	resp := struct {
		Book        *bookResponse `json:"book"`
		AuthorsText string        `json:"authors_text"`
		GenresText  string        `json:"genres_text"`
	}{h.wrap(book), strings.Join(authorLines, "\n"), strings.Join(genreLines, "\n")}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := bookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.UpdateBook(ctx, id, UpdateBookOptions(optionsFromPayload(params)))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.wrap(book))
}

func optionsFromPayload(params bookPayload) CreateBookOptions {
	opts := CreateBookOptions{
		Title:       truncate(params.Title, 200),
		Language:    truncate(params.Language, 50),
		AuthorsText: params.AuthorsText,
		GenresText:  params.GenresText,
	}
	if opts.Language == "" {
		opts.Language = models.DefaultLanguage
	}
	if params.ISBN != "" {
		isbn := truncate(params.ISBN, 20)
		opts.ISBN = &isbn
	}
	if params.Publisher != "" {
		publisher := truncate(params.Publisher, 200)
		opts.Publisher = &publisher
	}
	if params.Description != "" {
		opts.Description = &params.Description
	}
	// Non-numeric year or pages input is dropped rather than rejected.
	if year, err := strconv.Atoi(params.PublicationYear); err == nil {
		opts.PublicationYear = &year
	}
	if pages, err := strconv.Atoi(params.Pages); err == nil {
		opts.Pages = &pages
	}
	return opts
}
