// Package session defines who is signed in and where that fact is kept.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// Session is either a User or an Admin. No other implementations exist.
type Session interface {
	Kind() Kind
	// Owner is the email recorded as uploaded_by and activity actor.
	Owner() string
	sealed()
}

type User struct {
	ID    uuid.UUID
	Email string
	Name  string
}

func (User) Kind() Kind      { return KindUser }
func (u User) Owner() string { return u.Email }
func (User) sealed()         {}

// DisplayName is the name when one was given, else the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

type Admin struct {
	ID    uuid.UUID
	Email string
}

func (Admin) Kind() Kind      { return KindAdmin }
func (a Admin) Owner() string { return a.Email }
func (Admin) sealed()         {}

// IsAdmin is false for a nil session.
func IsAdmin(s Session) bool {
	return s != nil && s.Kind() == KindAdmin
}

// Key is the store key for a session of the given kind and token id.
func Key(kind Kind, tokenID string) string {
	return string(kind) + ":" + tokenID
}

// Store keeps live sessions. Get returns ErrNotFound for unknown or expired keys.
type Store interface {
	Get(ctx context.Context, key string) (Session, error)
	Set(ctx context.Context, key string, s Session, ttl time.Duration) error
	// Remove reports whether a live session was deleted. Unknown or expired
	// keys are not an error.
	Remove(ctx context.Context, key string) (bool, error)
}

type envelope struct {
	Kind  Kind      `json:"kind"`
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
}

func marshal(s Session) ([]byte, error) {
	var env envelope
	switch v := s.(type) {
	case User:
		env = envelope{Kind: KindUser, ID: v.ID, Email: v.Email, Name: v.Name}
	case Admin:
		env = envelope{Kind: KindAdmin, ID: v.ID, Email: v.Email}
	default:
		return nil, fmt.Errorf("unsupported session type %T", s)
	}
	return json.Marshal(env)
}

func unmarshal(data []byte) (Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	switch env.Kind {
	case KindUser:
		return User{ID: env.ID, Email: env.Email, Name: env.Name}, nil
	case KindAdmin:
		return Admin{ID: env.ID, Email: env.Email}, nil
	default:
		return nil, fmt.Errorf("unknown session kind %q", env.Kind)
	}
}
