package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"talkmaster/internal/domain"
)

type userRepository struct {
	DB querier
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, name, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.Name, string(u.Role), u.PasswordHash, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		if constraint, ok := isUniqueViolation(err); ok && constraint == constraintUserEmail {
			return fmt.Errorf("%w: email already in use", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `
		SELECT id, email, name, role, password_hash, created_at, updated_at
		FROM users
		WHERE ` + where
	u := &domain.User{}
	var role string
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return u, nil
}
