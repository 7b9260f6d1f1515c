package auth

import (
	"context"
	"errors"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// ErrBadCredentials is returned by Login for an unknown email or a wrong
// password. The two cases are not distinguished.
var ErrBadCredentials = errors.New("invalid email or password")

// UserStore is the persistence Accounts needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Accounts registers users, logs them in and resolves session tokens.
type Accounts struct {
	users  UserStore
	tokens *TokenIssuer
}

// NewAccounts creates an Accounts service.
func NewAccounts(users UserStore, tokens *TokenIssuer) *Accounts {
	return &Accounts{users: users, tokens: tokens}
}

// Tokens returns the token issuer.
func (a *Accounts) Tokens() *TokenIssuer { return a.tokens }

// Register validates creds and creates the account.
func (a *Accounts) Register(ctx context.Context, creds models.Credentials) (*models.User, error) {
	creds.Normalize()
	if err := creds.Validate(); err != nil {
		return nil, &apperr.ValidationError{Message: err.Error()}
	}
	hash, err := HashPassword(creds.Password)
	if err != nil {
		return nil, err
	}
	return a.users.CreateUser(ctx, creds.Email, hash)
}

// Login checks creds and returns a fresh session token.
func (a *Accounts) Login(ctx context.Context, creds models.Credentials) (string, *models.User, error) {
	creds.Normalize()
	u, err := a.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if !CheckPassword(u.PasswordHash, creds.Password) {
		return "", nil, ErrBadCredentials
	}
	token, err := a.tokens.Issue(u.ID)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Resolve returns the user a token was issued for.
func (a *Accounts) Resolve(ctx context.Context, token string) (*models.User, error) {
	id, err := a.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	u, err := a.users.GetUser(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return u, err
}

// Lookup returns the user registered under email.
func (a *Accounts) Lookup(ctx context.Context, email string) (*models.User, error) {
	return a.users.GetUserByEmail(ctx, email)
}
