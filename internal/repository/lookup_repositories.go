package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// LocationRepository loads the location lookup table.
type LocationRepository interface {
	List(ctx context.Context) ([]domain.Location, error)
}

// CategoryRepository loads the category lookup table.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// UserRepository loads the user directory.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, string, error)
}

type locationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository builds the repository.
func NewLocationRepository(pool *pgxpool.Pool) LocationRepository {
	return &locationRepository{pool: pool}
}

func (r *locationRepository) List(ctx context.Context) ([]domain.Location, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM locations ORDER BY name`)
	if err != nil {
		return nil, mapTableError(err)
	}
	defer rows.Close()

	var result []domain.Location
	for rows.Next() {
		var location domain.Location
		if err := rows.Scan(&location.ID, &location.Name); err != nil {
			return nil, err
		}
		result = append(result, location)
	}
	return result, rows.Err()
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, mapTableError(err)
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository builds the repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, full_name, email, role FROM users ORDER BY full_name`)
	if err != nil {
		return nil, mapTableError(err)
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.FullName, &user.Email, &user.Role); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

// GetByEmail returns the user and their password hash for login checks.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	var user domain.User
	var passwordHash string
	err := r.pool.QueryRow(ctx,
		`SELECT id, full_name, email, role, password_hash FROM users WHERE LOWER(email)=LOWER($1)`,
		email,
	).Scan(&user.ID, &user.FullName, &user.Email, &user.Role, &passwordHash)
	if err != nil {
		return nil, "", err
	}
	return &user, passwordHash, nil
}
