package reservations

import (
	"context"
	"database/sql"
	"time"

	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Holding windows granted when a copy is reserved.
const (
	PickupWindow = 7 * 24 * time.Hour
	LoanWindow   = 30 * 24 * time.Hour
)

type ListAllOptions struct {
	Status *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Reserve places a hold on a copy for a user. The whole check-and-write
// runs in one transaction, and the copy flip is conditional on the copy
// still being available, so two readers racing for the last copy cannot
// both win.
func (svc *Service) Reserve(ctx context.Context, copyID int, username string) (*models.Reservation, error) {
	now := time.Now().UTC()
	pickup := now.Add(PickupWindow)

	reservation := &models.Reservation{
		CopyID:          copyID,
		Username:        username,
		ReservationDate: now,
		PickupDeadline:  &pickup,
		DueDate:         now.Add(LoanWindow),
		Status:          models.ReservationReserved,
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		user := &models.User{}
		err := tx.NewSelect().
			Model(user).
			Where("u.username = ?", username).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("User")
			}
			return errors.WithStack(err)
		}

		open, err := tx.NewSelect().
			Model((*models.Reservation)(nil)).
			Where("r.username = ?", username).
			Where("r.status IN (?)", bun.In([]string{models.ReservationReserved, models.ReservationIssued})).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if open >= user.MaxBooks {
			return errcodes.ValidationError("You have reached your reservation limit")
		}

		copy := &models.BookCopy{}
		err = tx.NewSelect().
			Model(copy).
			Where("bc.copy_id = ?", copyID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Copy")
			}
			return errors.WithStack(err)
		}
		if copy.Status != models.CopyAvailable {
			return errcodes.Conflict("This copy is not available for reservation")
		}

		_, err = tx.NewInsert().Model(reservation).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		res, err := tx.NewUpdate().
			Model((*models.BookCopy)(nil)).
			Set("status = ?", models.CopyReserved).
			Where("copy_id = ? AND status = ?", copyID, models.CopyAvailable).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.Conflict("This copy is not available for reservation")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reservation, nil
}

// ListForUser returns a user's reservations, newest first, with the copy
// and book attached.
func (svc *Service) ListForUser(ctx context.Context, username string) ([]*models.Reservation, error) {
	reservations := []*models.Reservation{}

	err := svc.db.
		NewSelect().
		Model(&reservations).
		Relation("Copy").
		Relation("Copy.Book").
		Where("r.username = ?", username).
		Order("r.reservation_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return reservations, nil
}

// ListAll returns every reservation, optionally filtered by status, for
// the librarian management view.
func (svc *Service) ListAll(ctx context.Context, opts ListAllOptions) ([]*models.Reservation, error) {
	reservations := []*models.Reservation{}

	q := svc.db.
		NewSelect().
		Model(&reservations).
		Relation("Copy").
		Relation("Copy.Book").
		Relation("User").
		Order("r.reservation_date DESC")

	if opts.Status != nil && *opts.Status != "" {
		q = q.Where("r.status = ?", *opts.Status)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return reservations, nil
}

// Cancel cancels a user's own reservation, identified by copy, username
// and reservation timestamp. Only an open reservation can be cancelled;
// the copy is released back to available either way the update matched.
func (svc *Service) Cancel(ctx context.Context, copyID int, username string, reservationDate time.Time) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Reservation)(nil)).
			Set("status = ?", models.ReservationCancelled).
			Where("copy_id = ? AND username = ? AND reservation_date = ?", copyID, username, reservationDate).
			Where("status IN (?)", bun.In([]string{models.ReservationReserved, models.ReservationIssued})).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Reservation")
		}

		// The copy goes back to available unconditionally, even if it was
		// marked issued. Matches how the desk has always operated.
		_, err = tx.NewUpdate().
			Model((*models.BookCopy)(nil)).
			Set("status = ?", models.CopyAvailable).
			Where("copy_id = ?", copyID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// UpdateStatus moves a reservation to any of the four statuses and
// derives the copy status from it. Transitions are unrestricted: the
// desk needs to fix mistakes, so returned reservations can be reopened.
func (svc *Service) UpdateStatus(ctx context.Context, copyID int, username string, reservationDate time.Time, status string) error {
	if !models.IsValidReservationStatus(status) {
		return errcodes.ValidationError("Invalid reservation status")
	}

	copyStatus := models.CopyReserved
	switch status {
	case models.ReservationReturned, models.ReservationCancelled:
		copyStatus = models.CopyAvailable
	case models.ReservationIssued:
		copyStatus = models.CopyIssued
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Reservation)(nil)).
			Set("status = ?", status).
			Where("copy_id = ? AND username = ? AND reservation_date = ?", copyID, username, reservationDate).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Reservation")
		}

		_, err = tx.NewUpdate().
			Model((*models.BookCopy)(nil)).
			Set("status = ?", copyStatus).
			Where("copy_id = ?", copyID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}
