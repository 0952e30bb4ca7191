package dbhelper

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/ray-remotestate/cafeteria/models"
)

func CreateUser(ctx context.Context, q Querier, username, hashedPassword string, role models.Role) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO users (username, password, role)
		VALUES ($1, $2, $3)
		RETURNING id`, username, hashedPassword, role).Scan(&id)
	if IsUniqueViolation(err) {
		return 0, models.ErrDuplicateUsername
	}
	return id, err
}

func IsUserExists(ctx context.Context, q Querier, username string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// GetUserByPassword returns the user when the password matches its hash.
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func GetUserByPassword(ctx context.Context, q Querier, username, password string) (models.User, error) {
	var u models.User
	err := q.QueryRowContext(ctx, `
		SELECT id, username, password, role FROM users
		WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.Password, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return models.User{}, models.ErrInvalidCredentials
	}
	return u, nil
}

func GetUserRole(ctx context.Context, q Querier, userID int64) (models.Role, error) {
	var role models.Role
	err := q.QueryRowContext(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		// the session outlived its user
		return "", models.ErrUnauthenticated
	}
	return role, err
}

func SetUserRole(ctx context.Context, q Querier, userID int64, role models.Role) error {
	_, err := q.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	return err
}

func ListUsers(ctx context.Context, q Querier) ([]models.User, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, username, role FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func CountUsers(ctx context.Context, q Querier) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// EnsureAdmin creates username as an admin, or promotes it if it exists.
// An existing password is left alone.
func EnsureAdmin(ctx context.Context, q Querier, username, hashedPassword string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (username, password, role)
		VALUES ($1, $2, 'admin')
		ON CONFLICT (username) DO UPDATE SET role = 'admin'`, username, hashedPassword)
	return err
}
