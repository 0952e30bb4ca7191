package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ray-remotestate/cafeteria/models"
)

func HasPendingAdminRequest(ctx context.Context, q Querier, userID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM admin_requests
			WHERE user_id = $1 AND status = 'pending'
		)`, userID).Scan(&exists)
	return exists, err
}

func CreateAdminRequest(ctx context.Context, q Querier, userID int64, note string) (models.AdminRequest, error) {
	r := models.AdminRequest{UserID: userID, Status: models.RequestPending, Note: note}
	err := q.QueryRowContext(ctx, `
		INSERT INTO admin_requests (user_id, note)
		VALUES ($1, $2)
		RETURNING id, created_at`, userID, note).Scan(&r.ID, &r.CreatedAt)
	if IsUniqueViolation(err) {
		return models.AdminRequest{}, models.ErrRequestAlreadyPending
	}
	return r, err
}

func LockAdminRequest(ctx context.Context, q Querier, id int64) (models.AdminRequest, error) {
	var r models.AdminRequest
	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, status, note, created_at FROM admin_requests
		WHERE id = $1
		FOR UPDATE`, id).
		Scan(&r.ID, &r.UserID, &r.Status, &r.Note, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdminRequest{}, models.ErrRequestNotFound
	}
	return r, err
}

func SetAdminRequestStatus(ctx context.Context, q Querier, id int64, status models.AdminRequestStatus) error {
	_, err := q.ExecContext(ctx, `UPDATE admin_requests SET status = $1 WHERE id = $2`, status, id)
	return err
}

func ListAdminRequests(ctx context.Context, q Querier) ([]models.AdminRequestView, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT r.id, u.username, r.status, r.note, r.created_at
		FROM admin_requests r
		JOIN users u ON r.user_id = u.id
		ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.AdminRequestView, 0)
	for rows.Next() {
		var (
			r         models.AdminRequestView
			createdAt time.Time
		)
		if err := rows.Scan(&r.ID, &r.Username, &r.Status, &r.Note, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt = models.Timestamp(createdAt)
		requests = append(requests, r)
	}
	return requests, rows.Err()
}
