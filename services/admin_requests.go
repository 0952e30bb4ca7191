package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/cafeteria/models"
)

type AdminRequestService struct {
	store Store
}

func NewAdminRequestService(store Store) *AdminRequestService {
	return &AdminRequestService{store: store}
}

// Create files a promotion request for userID. The role is read from the
// store rather than trusted from the session, which may predate a promotion.
func (s *AdminRequestService) Create(ctx context.Context, userID int64, note string) (models.AdminRequest, error) {
	if userID == 0 {
		return models.AdminRequest{}, models.ErrUnauthenticated
	}

	var req models.AdminRequest
	err := s.store.InTx(ctx, func(tx Tx) error {
		role, err := tx.GetUserRole(ctx, userID)
		if err != nil {
			return err
		}
		if role == models.RoleAdmin {
			return models.ErrAlreadyAdmin
		}

		pending, err := tx.HasPendingAdminRequest(ctx, userID)
		if err != nil {
			return err
		}
		if pending {
			return models.ErrRequestAlreadyPending
		}

		req, err = tx.CreateAdminRequest(ctx, userID, note)
		return err
	})
	if err != nil {
		return models.AdminRequest{}, err
	}
	return req, nil
}

// Approve marks a pending request approved and promotes its user in the same
// transaction.
func (s *AdminRequestService) Approve(ctx context.Context, requestID int64) (models.AdminRequest, error) {
	return s.resolve(ctx, requestID, models.RequestApproved)
}

func (s *AdminRequestService) Reject(ctx context.Context, requestID int64) (models.AdminRequest, error) {
	return s.resolve(ctx, requestID, models.RequestRejected)
}

func (s *AdminRequestService) resolve(ctx context.Context, requestID int64, status models.AdminRequestStatus) (models.AdminRequest, error) {
	if requestID <= 0 {
		return models.AdminRequest{}, models.InvalidRequest("request_id required")
	}

	var req models.AdminRequest
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		req, err = tx.LockAdminRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Status != models.RequestPending {
			return models.ErrRequestNotPending
		}

		if err := tx.SetAdminRequestStatus(ctx, requestID, status); err != nil {
			return err
		}
		req.Status = status

		if status == models.RequestApproved {
			return tx.SetUserRole(ctx, req.UserID, models.RoleAdmin)
		}
		return nil
	})
	if err != nil {
		return models.AdminRequest{}, err
	}

	logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    req.UserID,
		"status":     status,
	}).Info("admin request resolved")
	return req, nil
}
