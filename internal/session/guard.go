// Package session authenticates administrators and tracks their sessions.
//
// A successful login issues an HS256-signed token naming the admin. A token
// authorizes operations only while it is unexpired and its session has not
// been revoked by logout, by a newer login, or by removal of the admin.
package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sheikh-saqib/bank-admin-ledger/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Session is an authenticated admin session.
type Session struct {
	ID         string
	Token      string
	AdminEmail string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

type Options struct {
	Secret []byte
	TTL    time.Duration
	// AllowConcurrent keeps earlier sessions alive when another admin logs in.
	// By default a login revokes every other session.
	AllowConcurrent bool
	BcryptCost      int
	Now             func() time.Time
}

type liveSession struct {
	email     string
	expiresAt time.Time
}

type Guard struct {
	mu          sync.Mutex
	credentials map[string][]byte      // email -> bcrypt hash
	active      map[string]liveSession // keyed by session id

	secret          []byte
	ttl             time.Duration
	allowConcurrent bool
	cost            int
	now             func() time.Time
}

func NewGuard(opts Options) (*Guard, error) {
	secret := opts.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Guard{
		credentials:     make(map[string][]byte),
		active:          make(map[string]liveSession),
		secret:          secret,
		ttl:             ttl,
		allowConcurrent: opts.AllowConcurrent,
		cost:            cost,
		now:             now,
	}, nil
}

// Register stores a new admin credential.
func (g *Guard) Register(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Validationf("admin email is required")
	}
	if password == "" {
		return models.Validationf("admin password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.credentials[email]; exists {
		return fmt.Errorf("%s: %w", email, models.ErrAdminExists)
	}
	g.credentials[email] = hash
	return nil
}

// Remove deletes an admin credential and revokes that admin's sessions.
func (g *Guard) Remove(email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.credentials[email]; !exists {
		return fmt.Errorf("%s: %w", email, models.ErrAdminNotFound)
	}
	delete(g.credentials, email)
	for id, live := range g.active {
		if live.email == email {
			delete(g.active, id)
		}
	}
	return nil
}

// Login checks the password against the stored credential and opens a session.
func (g *Guard) Login(email, password string) (Session, error) {
	g.mu.Lock()
	hash, ok := g.credentials[email]
	g.mu.Unlock()
	if !ok {
		return Session{}, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Session{}, models.ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("verify admin password: %w", err)
	}

	issued := g.now()
	s := Session{
		ID:         uuid.New().String(),
		AdminEmail: email,
		IssuedAt:   issued,
		ExpiresAt:  issued.Add(g.ttl),
	}
	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}
	s.Token = token

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.allowConcurrent {
		clear(g.active)
	}
	for id, live := range g.active {
		if !issued.Before(live.expiresAt) {
			delete(g.active, id)
		}
	}
	g.active[s.ID] = liveSession{email: email, expiresAt: s.ExpiresAt}
	return s, nil
}

// Authorize returns the admin email behind a live session token.
func (g *Guard) Authorize(token string) (string, error) {
	if token == "" {
		return "", models.ErrAuthRequired
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, g.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(g.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrAuthRequired, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	live, ok := g.active[claims.ID]
	if !ok || live.email != claims.Subject {
		return "", fmt.Errorf("%w: session revoked", models.ErrAuthRequired)
	}
	return live.email, nil
}

func (g *Guard) keyFunc(*jwt.Token) (any, error) {
	return g.secret, nil
}

// Logout revokes the session behind token. It returns the admin email that
// was logged out, or ErrNoActiveSession when the token is not live. A
// correctly signed but expired token still drops its session entry.
func (g *Guard) Logout(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, g.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return "", models.ErrNoActiveSession
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	live, ok := g.active[claims.ID]
	if !ok || live.email != claims.Subject {
		return "", models.ErrNoActiveSession
	}
	delete(g.active, claims.ID)
	if !g.now().Before(live.expiresAt) {
		return "", models.ErrNoActiveSession
	}
	return live.email, nil
}

// ActiveSessions reports how many sessions are currently live.
func (g *Guard) ActiveSessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}
