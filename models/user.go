package models

import (
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Password  string    `db:"password" json:"-"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

type AdminRequestStatus string

const (
	RequestPending  AdminRequestStatus = "pending"
	RequestApproved AdminRequestStatus = "approved"
	RequestRejected AdminRequestStatus = "rejected"
)

type AdminRequest struct {
	ID        int64              `db:"id" json:"id"`
	UserID    int64              `db:"user_id" json:"user_id"`
	Status    AdminRequestStatus `db:"status" json:"status"`
	Note      string             `db:"note" json:"note"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
}

// AdminRequestView is an admin request joined with the requester's username.
type AdminRequestView struct {
	ID        int64              `json:"id"`
	Username  string             `json:"username"`
	Status    AdminRequestStatus `json:"status"`
	Note      string             `json:"note"`
	CreatedAt Timestamp          `json:"created_at"`
}
