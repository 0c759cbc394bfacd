package copies

import (
	"context"
	"database/sql"

	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type CreateCopyOptions struct {
	BookID          int
	InventoryNumber string
	Condition       string
	Location        *string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateCopy adds a physical copy of a book. Inventory numbers are
// unique across the collection; new copies always start out available.
func (svc *Service) CreateCopy(ctx context.Context, opts CreateCopyOptions) (*models.BookCopy, error) {
	copy := &models.BookCopy{
		BookID:          opts.BookID,
		InventoryNumber: opts.InventoryNumber,
		Condition:       opts.Condition,
		Status:          models.CopyAvailable,
		Location:        opts.Location,
	}
	if copy.Condition == "" {
		copy.Condition = models.ConditionGood
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.BookCopy)(nil)).
			Where("bc.inventory_number = ?", opts.InventoryNumber).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict("A copy with this inventory number already exists")
		}

		exists, err = tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("b.book_id = ?", opts.BookID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Book")
		}

		err = tx.NewSelect().
			ColumnExpr("COALESCE(MAX(copy_id), 0) + 1").
			Table("book_copies").
			Scan(ctx, &copy.ID)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewInsert().Model(copy).Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return copy, nil
}

// RetrieveCopy loads one copy with its book.
func (svc *Service) RetrieveCopy(ctx context.Context, id int) (*models.BookCopy, error) {
	copy := &models.BookCopy{}

	err := svc.db.
		NewSelect().
		Model(copy).
		Relation("Book").
		Where("bc.copy_id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Copy")
		}
		return nil, errors.WithStack(err)
	}

	return copy, nil
}
