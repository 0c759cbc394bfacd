package stats

import (
	"context"

	"github.com/booknest/booknest/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// ReaderDashboard is what a reader sees on login.
type ReaderDashboard struct {
	ActiveReservations int `json:"active_reservations"`
	MaxBooks           int `json:"max_books"`
}

// StaffDashboard is the shared librarian/admin overview. The admin
// variant carries two extra totals.
type StaffDashboard struct {
	TotalBooks          int  `json:"total_books"`
	AvailableCopies     int  `json:"available_copies"`
	PendingReservations int  `json:"pending_reservations"`
	TotalReaders        int  `json:"total_readers"`
	TotalUsers          *int `json:"total_users,omitempty"`
	TotalCopies         *int `json:"total_copies,omitempty"`
}

// PopularBook is one row of the most-reserved-books ranking.
type PopularBook struct {
	BookID           int    `json:"book_id"`
	Title            string `json:"title"`
	ReservationCount int    `json:"reservation_count"`
}

type GenreStat struct {
	Name      string `json:"name"`
	BookCount int    `json:"book_count"`
}

type AuthorStat struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BookCount int    `json:"book_count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type RoleCount struct {
	Role  string `json:"role"`
	Count int    `json:"count"`
}

// AdminStatistics is the full reporting battery.
type AdminStatistics struct {
	TotalBooks         int            `json:"total_books"`
	TotalCopies        int            `json:"total_copies"`
	AvailableCopies    int            `json:"available_copies"`
	TotalUsers         int            `json:"total_users"`
	TotalReaders       int            `json:"total_readers"`
	TotalReservations  int            `json:"total_reservations"`
	ActiveReservations int            `json:"active_reservations"`
	PopularBooks       []*PopularBook `json:"popular_books"`
	GenreStats         []*GenreStat   `json:"genre_stats"`
	AuthorStats        []*AuthorStat  `json:"author_stats"`
	ReservationStatus  []*StatusCount `json:"reservation_status"`
	UserRoles          []*RoleCount   `json:"user_roles"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ReaderStats returns the reader dashboard numbers: how many holds the
// user currently has open, against their cap.
func (svc *Service) ReaderStats(ctx context.Context, username string) (*ReaderDashboard, error) {
	active, err := svc.db.NewSelect().
		Model((*models.Reservation)(nil)).
		Where("r.username = ?", username).
		Where("r.status IN (?)", bun.In([]string{models.ReservationReserved, models.ReservationIssued})).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	maxBooks := models.DefaultMaxBooks
	err = svc.db.NewSelect().
		Model((*models.User)(nil)).
		Column("max_books").
		Where("u.username = ?", username).
		Scan(ctx, &maxBooks)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &ReaderDashboard{ActiveReservations: active, MaxBooks: maxBooks}, nil
}

// StaffStats returns the librarian overview; when forAdmin is set it
// adds the user and copy totals the admin dashboard shows.
func (svc *Service) StaffStats(ctx context.Context, forAdmin bool) (*StaffDashboard, error) {
	dash := &StaffDashboard{}
	var err error

	dash.TotalBooks, err = svc.db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dash.AvailableCopies, err = svc.db.NewSelect().
		Model((*models.BookCopy)(nil)).
		Where("bc.status = ?", models.CopyAvailable).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dash.PendingReservations, err = svc.db.NewSelect().
		Model((*models.Reservation)(nil)).
		Where("r.status = ?", models.ReservationReserved).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	dash.TotalReaders, err = svc.db.NewSelect().
		Model((*models.User)(nil)).
		Where("u.role = ?", models.RoleReader).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if forAdmin {
		totalUsers, err := svc.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		totalCopies, err := svc.db.NewSelect().Model((*models.BookCopy)(nil)).Count(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		dash.TotalUsers = &totalUsers
		dash.TotalCopies = &totalCopies
	}

	return dash, nil
}

// Statistics builds the admin reporting battery: collection totals, the
// ten most reserved books, per-genre and per-author book counts, and
// reservation/user breakdowns.
func (svc *Service) Statistics(ctx context.Context) (*AdminStatistics, error) {
	stats := &AdminStatistics{
		PopularBooks:      []*PopularBook{},
		GenreStats:        []*GenreStat{},
		AuthorStats:       []*AuthorStat{},
		ReservationStatus: []*StatusCount{},
		UserRoles:         []*RoleCount{},
	}
	var err error

	stats.TotalBooks, err = svc.db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stats.TotalCopies, err = svc.db.NewSelect().Model((*models.BookCopy)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stats.AvailableCopies, err = svc.db.NewSelect().
		Model((*models.BookCopy)(nil)).
		Where("bc.status = ?", models.CopyAvailable).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stats.TotalUsers, err = svc.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stats.TotalReaders, err = svc.db.NewSelect().
		Model((*models.User)(nil)).
		Where("u.role = ?", models.RoleReader).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stats.TotalReservations, err = svc.db.NewSelect().Model((*models.Reservation)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	stats.ActiveReservations, err = svc.db.NewSelect().
		Model((*models.Reservation)(nil)).
		Where("r.status IN (?)", bun.In([]string{models.ReservationReserved, models.ReservationIssued})).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Books with no reservations still rank, at zero.
	err = svc.db.NewSelect().
		ColumnExpr("b.book_id").
		ColumnExpr("b.title").
		ColumnExpr("COUNT(r.copy_id) AS reservation_count").
		TableExpr("books AS b").
		Join("LEFT JOIN book_copies AS bc ON bc.book_id = b.book_id").
		Join("LEFT JOIN reservations AS r ON r.copy_id = bc.copy_id").
		GroupExpr("b.book_id, b.title").
		OrderExpr("reservation_count DESC").
		Limit(10).
		Scan(ctx, &stats.PopularBooks)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		ColumnExpr("g.name").
		ColumnExpr("COUNT(DISTINCT bg.book_id) AS book_count").
		TableExpr("genres AS g").
		Join("LEFT JOIN book_genres AS bg ON bg.genre_id = g.genre_id").
		GroupExpr("g.genre_id, g.name").
		OrderExpr("book_count DESC").
		Scan(ctx, &stats.GenreStats)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		ColumnExpr("a.first_name").
		ColumnExpr("a.last_name").
		ColumnExpr("COUNT(DISTINCT ba.book_id) AS book_count").
		TableExpr("authors AS a").
		Join("LEFT JOIN book_authors AS ba ON ba.author_id = a.author_id").
		GroupExpr("a.author_id, a.first_name, a.last_name").
		OrderExpr("book_count DESC").
		Limit(10).
		Scan(ctx, &stats.AuthorStats)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS count").
		TableExpr("reservations").
		GroupExpr("status").
		Scan(ctx, &stats.ReservationStatus)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = svc.db.NewSelect().
		ColumnExpr("role").
		ColumnExpr("COUNT(*) AS count").
		TableExpr("users").
		GroupExpr("role").
		Scan(ctx, &stats.UserRoles)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}
