package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitPilotAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New().String(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET username   = COALESCE($1, username),
	    first_name = COALESCE($2, first_name),
	    last_name  = COALESCE($3, last_name),
	    image_url  = COALESCE($4, image_url),
	    updated_at = NOW()
	WHERE clerk_id = $5
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, req.Username, req.FirstName, req.LastName, req.ImageURL, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateUserByClerkID(ctx context.Context, clerkID string, req *user.CreateUserRequest) error {
	query := `
	UPDATE users
	SET email      = $1,
	    username   = $2,
	    first_name = $3,
	    last_name  = $4,
	    image_url  = $5,
	    updated_at = NOW()
	WHERE clerk_id = $6
	`

	_, err := s.db.Exec(ctx, query, req.Email, req.Username, req.FirstName, req.LastName, req.ImageURL, clerkID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *UserService) MarkEmailVerified(ctx context.Context, clerkID string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// DeleteUserByClerkID removes the user and everything they own. Habits,
// notifications, and device tokens cascade in one transaction.
func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user not found")
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM habits WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete habits: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM device_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete device tokens: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
