package copies

import (
	"net/http"

	"github.com/booknest/booknest/pkg/books"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	copyService *Service
	bookService *books.Service
}

func (h *handler) addForm(c echo.Context) error {
	ctx := c.Request().Context()

	allBooks, err := h.bookService.ListBooks(ctx, books.ListBooksOptions{})
	if err != nil {
		return err
	}

	resp := struct {
		Books []*booksListItem `json:"books"`
	}{make([]*booksListItem, 0, len(allBooks))}

	for _, book := range allBooks {
		resp.Books = append(resp.Books, &booksListItem{ID: book.ID, Title: book.Title})
	}

	return c.JSON(http.StatusOK, resp)
}

type booksListItem struct {
	ID    int    `json:"book_id"`
	Title string `json:"title"`
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := copyPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := CreateCopyOptions{
		BookID:          params.BookID,
		InventoryNumber: params.InventoryNumber,
		Condition:       params.Condition,
	}
	if params.Location != "" {
		opts.Location = &params.Location
	}

	copy, err := h.copyService.CreateCopy(ctx, opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, copy)
}
