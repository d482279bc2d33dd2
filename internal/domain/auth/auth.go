package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrManagerAccessRequired = errors.New("manager access required")
)

// Role is the caller's role carried in the access token.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleOwner    Role = "owner"
)
