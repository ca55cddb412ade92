package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/trivia-league/internal/apperror"
	"github.com/sakif/trivia-league/internal/model"
	"github.com/sakif/trivia-league/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, knowledge_points, following, avatar, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u         model.User
		following string
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.KnowledgePoints,
		&following,
		&u.Avatar,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(following), &u.Following); err != nil {
		return nil, fmt.Errorf("decoding following of %s: %w", u.Username, err)
	}
	if u.Following == nil {
		u.Following = []string{}
	}
	return &u, nil
}

// Create inserts a new user, filling in ID and timestamps. A duplicate
// username or email yields apperror.ErrConflict.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Following == nil {
		user.Following = []string{}
	}

	following, err := json.Marshal(user.Following)
	if err != nil {
		return fmt.Errorf("sqlite: encoding following: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.KnowledgePoints,
		string(following),
		user.Avatar,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// List returns every user ordered by insertion. Callers sort as they need.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// GetByUsername returns apperror.ErrNotFound when no user has that username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}
	return u, nil
}

// GetByEmail returns apperror.ErrNotFound when no user has that email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("email", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// UpdateFollowing overwrites only the following column of one user.
func (db *DB) UpdateFollowing(ctx context.Context, id string, following []string) error {
	if following == nil {
		following = []string{}
	}
	encoded, err := json.Marshal(following)
	if err != nil {
		return fmt.Errorf("sqlite: encoding following: %w", err)
	}
	return db.updateUserColumn(ctx, id, "following", string(encoded))
}

// UpdatePoints overwrites only the knowledge_points column of one user.
func (db *DB) UpdatePoints(ctx context.Context, id string, points int) error {
	return db.updateUserColumn(ctx, id, "knowledge_points", points)
}

// updateUserColumn is the merge-write primitive. column is always a constant
// from this file, never user input.
func (db *DB) updateUserColumn(ctx context.Context, id, column string, value any) error {
	result, err := db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = ?, updated_at = ? WHERE id = ?`, column),
		value,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating %s of user %s: %w", column, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
