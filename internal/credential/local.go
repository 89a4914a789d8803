package credential

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LocalProvider is an in-memory credential store for development and tests.
// Passwords are bcrypt-hashed; creating a credential for an email that already
// has one returns the existing id when the password matches, keeping the
// operation idempotent for retried invite acceptance.
type LocalProvider struct {
	mu      sync.Mutex
	byEmail map[string]localCredential
	byID    map[string]localCredential
}

type localCredential struct {
	id           string
	email        string
	passwordHash []byte
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{
		byEmail: make(map[string]localCredential),
		byID:    make(map[string]localCredential),
	}
}

func (p *LocalProvider) CreateCredential(_ context.Context, email, password string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.byEmail[email]; ok {
		if bcrypt.CompareHashAndPassword(existing.passwordHash, []byte(password)) == nil {
			return existing.id, nil
		}
		return "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	cred := localCredential{
		id:           uuid.NewString(),
		email:        email,
		passwordHash: hash,
	}
	p.byEmail[email] = cred
	p.byID[cred.id] = cred
	return cred.id, nil
}

func (p *LocalProvider) GetCredential(_ context.Context, credentialID string) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred, ok := p.byID[credentialID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return Profile{ID: cred.id, Email: cred.email}, nil
}
