package users

import (
	"context"
	"database/sql"
	"strings"

	"github.com/booknest/booknest/pkg/auth"
	"github.com/booknest/booknest/pkg/errcodes"
	"github.com/booknest/booknest/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListUsersOptions struct {
	Search *string
	Role   *string
}

type CreateUserOptions struct {
	Username   string
	Password   string
	Email      string
	FullName   string
	Phone      *string
	CardNumber *string
	Role       string
	MaxBooks   int
}

// UpdateUserOptions carries the edit form. An empty Password leaves the
// stored hash untouched.
type UpdateUserOptions struct {
	Password   string
	Email      string
	FullName   string
	Phone      *string
	CardNumber *string
	Role       string
	MaxBooks   int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// List returns users for the admin screen: substring search over
// username, full name, and email, optional exact role filter, ordered
// by username.
func (svc *Service) List(ctx context.Context, opts ListUsersOptions) ([]*models.User, error) {
	users := []*models.User{}

	q := svc.db.
		NewSelect().
		Model(&users).
		Order("u.username ASC")

	if opts.Search != nil && *opts.Search != "" {
		pattern := "%" + strings.ToLower(*opts.Search) + "%"
		q = q.Where("(LOWER(u.username) LIKE ? OR LOWER(u.full_name) LIKE ? OR LOWER(u.email) LIKE ?)", pattern, pattern, pattern)
	}
	if opts.Role != nil && *opts.Role != "" {
		q = q.Where("u.role = ?", *opts.Role)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return users, nil
}

// Retrieve loads one user by username.
func (svc *Service) Retrieve(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}

	err := svc.db.
		NewSelect().
		Model(user).
		Where("u.username = ?", username).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// Create adds a user. The username is taken first-come: a duplicate is
// reported as a conflict rather than overwritten.
func (svc *Service) Create(ctx context.Context, opts CreateUserOptions) (*models.User, error) {
	if !models.IsValidRole(opts.Role) {
		return nil, errcodes.ValidationError("Invalid role")
	}

	hash, err := auth.HashPassword(truncate(opts.Password, 50))
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     truncate(opts.Username, 50),
		PasswordHash: hash,
		Email:        truncate(opts.Email, 100),
		FullName:     truncate(opts.FullName, 150),
		Phone:        truncatePtr(opts.Phone, 20),
		CardNumber:   truncatePtr(opts.CardNumber, 20),
		Role:         opts.Role,
		MaxBooks:     opts.MaxBooks,
	}
	if user.MaxBooks <= 0 {
		user.MaxBooks = models.DefaultMaxBooks
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.User)(nil)).
			Where("u.username = ?", user.Username).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict("A user with this username already exists")
		}

		_, err = tx.NewInsert().Model(user).Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Update rewrites a user's profile fields. The password changes only
// when the form supplies a new one.
func (svc *Service) Update(ctx context.Context, username string, opts UpdateUserOptions) (*models.User, error) {
	if !models.IsValidRole(opts.Role) {
		return nil, errcodes.ValidationError("Invalid role")
	}

	user, err := svc.Retrieve(ctx, username)
	if err != nil {
		return nil, err
	}

	user.Email = truncate(opts.Email, 100)
	user.FullName = truncate(opts.FullName, 150)
	user.Phone = truncatePtr(opts.Phone, 20)
	user.CardNumber = truncatePtr(opts.CardNumber, 20)
	user.Role = opts.Role
	user.MaxBooks = opts.MaxBooks
	if user.MaxBooks <= 0 {
		user.MaxBooks = models.DefaultMaxBooks
	}

	columns := []string{"email", "full_name", "phone", "card_number", "role", "max_books"}

	if opts.Password != "" {
		hash, err := auth.HashPassword(truncate(opts.Password, 50))
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		columns = append(columns, "password_hash")
	}

	_, err = svc.db.NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return user, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}

func truncatePtr(s *string, max int) *string {
	if s == nil || *s == "" {
		return nil
	}
	out := truncate(*s, max)
	return &out
}
