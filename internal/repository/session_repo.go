package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tavolo/internal/entities"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "wizard:session:"
	lockKeyPrefix    = "wizard:lock:"

	// Sessions slide: every save renews the TTL, so an abandoned draft expires
	// half an hour after the diner's last action.
	sessionTTL = 30 * time.Minute

	// Locks are short. They only cover one wizard operation; the fetch
	// generation token catches anything that outlives an expired lock.
	lockTTL = 10 * time.Second
)

// SessionRepository keeps wizard drafts in Redis so any API instance can serve
// any step of a booking in progress.
type SessionRepository struct {
	Client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{Client: client}
}

// Get returns the session, or (nil, nil) when it does not exist or has expired.
func (r *SessionRepository) Get(ctx context.Context, id string) (*entities.BookingSession, error) {
	raw, err := r.Client.Get(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading session: %w", err)
	}
	var session entities.BookingSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("error decoding session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *entities.BookingSession) error {
	session.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	if err := r.Client.Set(ctx, sessionKeyPrefix+session.ID, raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.Client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// AcquireLock takes the per-session mutation lock. It returns false when
// another operation on the same session is already in flight.
func (r *SessionRepository) AcquireLock(ctx context.Context, id string) (bool, error) {
	ok, err := r.Client.SetNX(ctx, lockKeyPrefix+id, "1", lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("error acquiring session lock: %w", err)
	}
	return ok, nil
}

// ReleaseLock is best effort: an unreleased lock expires on its own.
func (r *SessionRepository) ReleaseLock(ctx context.Context, id string) {
	r.Client.Del(ctx, lockKeyPrefix+id)
}
