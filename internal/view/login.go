package view

import (
	"context"
	"sync"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/router"
)

// Authenticator performs the login call
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
}

// LoginPage validates the sign-in form and continues to the requested view
type LoginPage struct {
	auth     Authenticator
	nav      *router.Navigator
	notifier *Notifier

	mu         sync.Mutex
	submitting bool
}

func NewLoginPage(auth Authenticator, nav *router.Navigator, notifier *Notifier) *LoginPage {
	if notifier == nil {
		notifier = NewNotifier(0)
	}
	return &LoginPage{auth: auth, nav: nav, notifier: notifier}
}

// Submit signs in and navigates to the return location
func (p *LoginPage) Submit(ctx context.Context, form LoginForm) (router.Location, error) {
	if err := form.Validate(); err != nil {
		return p.nav.Current(), err
	}

	p.mu.Lock()
	p.submitting = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.submitting = false
		p.mu.Unlock()
	}()

	if _, err := p.auth.Login(ctx, form.Email, form.Password); err != nil {
		p.notifier.Show(ToastError, "Login failed: "+err.Error())
		return p.nav.Current(), err
	}
	return p.nav.AfterLogin(), nil
}

func (p *LoginPage) Submitting() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitting
}
