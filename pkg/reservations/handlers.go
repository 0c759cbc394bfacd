package reservations

import (
	"net/http"
	"strconv"

	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/dates"
	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	reservationService *Service
}

func (h *handler) reserve(c echo.Context) error {
	ctx := c.Request().Context()

	copyID, err := strconv.Atoi(c.Param("copyId"))
	if err != nil {
		return errcodes.NotFound("Copy")
	}

	username, ok := auth.UsernameFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Please log in")
	}

	reservation, err := h.reservationService.Reserve(ctx, copyID, username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, reservation)
}

func (h *handler) listMine(c echo.Context) error {
	ctx := c.Request().Context()

	username, ok := auth.UsernameFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Please log in")
	}

	reservations, err := h.reservationService.ListForUser(ctx, username)
	if err != nil {
		return err
	}

	resp := struct {
		Reservations []*models.Reservation `json:"reservations"`
	}{reservations}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) cancel(c echo.Context) error {
	ctx := c.Request().Context()

	copyID, err := strconv.Atoi(c.Param("copyId"))
	if err != nil {
		return errcodes.NotFound("Copy")
	}

	username, ok := auth.UsernameFromContext(c)
	if !ok {
		return errcodes.Unauthorized("Please log in")
	}

	params := cancelPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reservationDate, ok := dates.Parse(params.ReservationDate)
	if !ok {
		return errcodes.ValidationError("Invalid reservation date")
	}

	err = h.reservationService.Cancel(ctx, copyID, username, reservationDate)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Reservation cancelled"})
}

func (h *handler) listAll(c echo.Context) error {
	ctx := c.Request().Context()

	params := listAllQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reservations, err := h.reservationService.ListAll(ctx, ListAllOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Reservations []*models.Reservation `json:"reservations"`
	}{reservations}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) updateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	copyID, err := strconv.Atoi(c.Param("copyId"))
	if err != nil {
		return errcodes.NotFound("Copy")
	}
	username := c.Param("username")

	params := updateStatusPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reservationDate, ok := dates.Parse(params.ReservationDate)
	if !ok {
		return errcodes.ValidationError("Invalid reservation date")
	}

	err = h.reservationService.UpdateStatus(ctx, copyID, username, reservationDate, params.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Reservation status updated"})
}
