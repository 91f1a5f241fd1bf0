package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"peakform/internal/auth/models"
	id "peakform/pkg/domain"
	"peakform/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

// PostgresStore persists users in PostgreSQL. Requires the users table from
// migrations/001_users.sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, role,
	goals, gender, age, height_cm, weight_kg, activity_level, favorite_sport,
	created_at, updated_at`

func (s *PostgresStore) CreateIfEmailAvailable(ctx context.Context, u *models.User) error {
	goals := make([]string, 0, len(u.Goals))
	for _, g := range u.Goals {
		goals = append(goals, g.String())
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		u.ID.String(), u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Role.String(), pq.Array(goals), u.Gender.String(), u.Age,
		u.HeightCm, u.WeightKg, u.ActivityLevel.String(), u.FavoriteSport,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1`, userID.String())
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)
	return scanUser(row)
}

func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, userID id.UserID, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID.String(), hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u      models.User
		rawID  string
		role   string
		goals  pq.StringArray
		gender string
		level  string
	)
	err := row.Scan(&rawID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&role, &goals, &gender, &u.Age, &u.HeightCm, &u.WeightKg, &level,
		&u.FavoriteSport, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = userID
	u.Role = id.Role(role)
	u.Gender = id.Gender(gender)
	u.ActivityLevel = id.ActivityLevel(level)
	u.Goals = make([]id.Goal, 0, len(goals))
	for _, g := range goals {
		u.Goals = append(u.Goals, id.Goal(g))
	}
	return &u, nil
}
