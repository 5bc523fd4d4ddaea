package auth

import (
	"strings"
	"sync"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

// Directory maps known login emails to display identities
type Directory struct {
	mu    sync.RWMutex
	users map[string]domain.UserInfo // email -> identity
}

// NewDirectory creates a directory seeded with the demo accounts
func NewDirectory() *Directory {
	d := &Directory{
		users: make(map[string]domain.UserInfo),
	}

	d.Add(domain.UserInfo{ID: "usr-001", Email: "admin@reviewdesk.io", Name: "Admin User", Role: "admin"})
	d.Add(domain.UserInfo{ID: "usr-002", Email: "manager@reviewdesk.io", Name: "Store Manager", Role: "manager"})
	d.Add(domain.UserInfo{ID: "usr-003", Email: "agent@reviewdesk.io", Name: "Support Agent", Role: "agent"})

	return d
}

// Add registers an identity
func (d *Directory) Add(user domain.UserInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[strings.ToLower(user.Email)] = user
}

// Resolve returns the identity for email. Unknown emails get a generic
// admin identity echoing the submitted address.
func (d *Directory) Resolve(email string) domain.UserInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if user, ok := d.users[strings.ToLower(strings.TrimSpace(email))]; ok {
		return user
	}
	return domain.UserInfo{
		ID:    "usr-001",
		Email: strings.TrimSpace(email),
		Name:  "Admin User",
		Role:  "admin",
	}
}
