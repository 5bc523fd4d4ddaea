package domain

import "context"

// Storage keys used for the persisted session
const (
	StorageKeyToken = "authToken"
	StorageKeyUser  = "currentUser"
)

// UserInfo is the identity returned by a successful login
type UserInfo struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
	Role  string `json:"role" yaml:"role"`
}

// Session is the client-held authentication record
type Session struct {
	Authenticated bool      `json:"authenticated"`
	Token         string    `json:"token,omitempty"`
	User          *UserInfo `json:"user,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the body returned by POST /api/auth/login
type LoginResult struct {
	Success bool      `json:"success"`
	Token   string    `json:"token,omitempty"`
	User    *UserInfo `json:"user,omitempty"`
	Message string    `json:"message,omitempty"`
}

// LocalStorage is the durable key/value store holding the session between runs.
// GetItem reports ok=false when the key is absent.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
