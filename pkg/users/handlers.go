package users

import (
	"net/http"

	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	userService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := listUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, err := h.userService.List(ctx, ListUsersOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Users []*models.User `json:"users"`
	}{users}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) addForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"user":  nil,
		"roles": []string{models.RoleReader, models.RoleLibrarian, models.RoleAdmin},
	})
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := createUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Create(ctx, CreateUserOptions{
		Username:   params.Username,
		Password:   params.Password,
		Email:      params.Email,
		FullName:   params.FullName,
		Phone:      optional(params.Phone),
		CardNumber: optional(params.CardNumber),
		Role:       params.Role,
		MaxBooks:   params.MaxBooks,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *handler) editForm(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userService.Retrieve(ctx, c.Param("username"))
	if err != nil {
		return err
	}

	resp := struct {
		User  *models.User `json:"user"`
		Roles []string     `json:"roles"`
	}{user, []string{models.RoleReader, models.RoleLibrarian, models.RoleAdmin}}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	params := updateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Update(ctx, c.Param("username"), UpdateUserOptions{
		Password:   params.Password,
		Email:      params.Email,
		FullName:   params.FullName,
		Phone:      optional(params.Phone),
		CardNumber: optional(params.CardNumber),
		Role:       params.Role,
		MaxBooks:   params.MaxBooks,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
