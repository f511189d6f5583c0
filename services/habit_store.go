package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habitPilotAPI/internal/habit"
)

// HabitStore is the persistence boundary for habits. The habit service is
// written against this interface so tests can substitute an in-memory store
// instead of a live database.
type HabitStore interface {
	ResolveUser(ctx context.Context, clerkID string) (uuid.UUID, error)
	Create(ctx context.Context, h *habit.Habit) error
	List(ctx context.Context, userID uuid.UUID) ([]*habit.Habit, error)
	Get(ctx context.Context, userID, habitID uuid.UUID) (*habit.Habit, error)
	UpdateFields(ctx context.Context, userID, habitID uuid.UUID, req *habit.UpdateHabitRequest) (*habit.Habit, error)
	Delete(ctx context.Context, userID, habitID uuid.UUID) error

	// UpdateCompletion persists the (dates, streak, lastCompleted) triple in
	// one statement, accepted only if the row still carries the version read
	// at the start of the attempt. Returns habit.ErrConflict on a version
	// mismatch and habit.ErrNotFound if the habit vanished.
	UpdateCompletion(ctx context.Context, userID, habitID uuid.UUID, version int64, dates []string, streakCount int, lastCompleted time.Time) error
}

type PostgresHabitStore struct {
	db *pgxpool.Pool
}

func NewPostgresHabitStore(db *pgxpool.Pool) *PostgresHabitStore {
	return &PostgresHabitStore{db: db}
}

const habitColumns = `id, user_id, name, description, goal, category, frequency, streak, last_completed, completed_dates, version, created_at, updated_at`

func scanHabit(row pgx.Row) (*habit.Habit, error) {
	h := &habit.Habit{}
	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Description,
		&h.Goal,
		&h.Category,
		&h.Frequency,
		&h.Streak,
		&h.LastCompleted,
		&h.CompletedDates,
		&h.Version,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h, nil
}

func (s *PostgresHabitStore) ResolveUser(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	return userID, nil
}

func (s *PostgresHabitStore) Create(ctx context.Context, h *habit.Habit) error {
	query := `
	INSERT INTO habits (id, user_id, name, description, goal, category, frequency, streak, last_completed, completed_dates, version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.Exec(
		ctx,
		query,
		h.ID,
		h.UserID,
		h.Name,
		h.Description,
		h.Goal,
		h.Category,
		h.Frequency,
		h.Streak,
		h.LastCompleted,
		h.CompletedDates,
		h.Version,
		h.CreatedAt,
		h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	return nil
}

func (s *PostgresHabitStore) List(ctx context.Context, userID uuid.UUID) ([]*habit.Habit, error) {
	query := fmt.Sprintf(`
	SELECT %s
	FROM habits
	WHERE user_id = $1
	ORDER BY created_at DESC
	`, habitColumns)

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []*habit.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return habits, nil
}

func (s *PostgresHabitStore) Get(ctx context.Context, userID, habitID uuid.UUID) (*habit.Habit, error) {
	query := fmt.Sprintf(`
	SELECT %s
	FROM habits
	WHERE id = $1 AND user_id = $2
	`, habitColumns)

	h, err := scanHabit(s.db.QueryRow(ctx, query, habitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, habit.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return h, nil
}

// UpdateFields edits descriptive fields only; completion data never passes
// through here.
func (s *PostgresHabitStore) UpdateFields(ctx context.Context, userID, habitID uuid.UUID, req *habit.UpdateHabitRequest) (*habit.Habit, error) {
	query := fmt.Sprintf(`
	UPDATE habits
	SET name        = COALESCE($1, name),
	    description = COALESCE($2, description),
	    goal        = COALESCE($3, goal),
	    category    = COALESCE($4, category),
	    frequency   = COALESCE($5, frequency),
	    updated_at  = NOW()
	WHERE id = $6 AND user_id = $7
	RETURNING %s
	`, habitColumns)

	h, err := scanHabit(s.db.QueryRow(ctx, query, req.Name, req.Description, req.Goal, req.Category, req.Frequency, habitID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, habit.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return h, nil
}

func (s *PostgresHabitStore) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	if result.RowsAffected() == 0 {
		return habit.ErrNotFound
	}

	return nil
}

func (s *PostgresHabitStore) UpdateCompletion(ctx context.Context, userID, habitID uuid.UUID, version int64, dates []string, streakCount int, lastCompleted time.Time) error {
	query := `
	UPDATE habits
	SET completed_dates = $1,
	    streak          = $2,
	    last_completed  = $3,
	    version         = version + 1,
	    updated_at      = NOW()
	WHERE id = $4 AND user_id = $5 AND version = $6
	`

	result, err := s.db.Exec(ctx, query, dates, streakCount, lastCompleted, habitID, userID, version)
	if err != nil {
		return fmt.Errorf("failed to persist completion: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either a concurrent writer bumped the version or the habit was
		// deleted out from under us. Distinguish the two for the caller.
		var exists bool
		err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM habits WHERE id = $1 AND user_id = $2)`, habitID, userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check habit existence: %w", err)
		}
		if !exists {
			return habit.ErrNotFound
		}
		return habit.ErrConflict
	}

	return nil
}
