package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ceiba21/internal/domain"

	"github.com/go-redis/redis/v8"
)

// SessionStore keeps conversation state and the collected data bag in Redis.
// Both keys share one TTL, refreshed on every write, so an abandoned
// conversation evaporates as a pair and the client restarts from the menu.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a session store backed by the given client
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func stateKey(userID int64) string {
	return fmt.Sprintf("conv_state:%d", userID)
}

func dataKey(userID int64) string {
	return fmt.Sprintf("conv_data:%d", userID)
}

// State returns the user's current conversation state. A missing or expired
// key means the conversation starts over.
func (s *SessionStore) State(ctx context.Context, userID int64) (domain.ConversationState, error) {
	val, err := s.client.Get(ctx, stateKey(userID)).Result()
	if err == redis.Nil {
		return domain.StateStart, nil
	}
	if err != nil {
		return domain.StateStart, err
	}

	state, err := domain.ParseConversationState(val)
	if err != nil {
		// Corrupted key, reset rather than wedge the user
		return domain.StateStart, nil
	}
	return state, nil
}

// SetState stores the state and refreshes the session TTL
func (s *SessionStore) SetState(ctx context.Context, userID int64, state domain.ConversationState) error {
	if err := s.client.Set(ctx, stateKey(userID), string(state), s.ttl).Err(); err != nil {
		return err
	}
	// Keep the data bag alive as long as the state
	return s.client.Expire(ctx, dataKey(userID), s.ttl).Err()
}

// Data returns the collected conversation data. Missing keys yield an empty
// bag, never nil.
func (s *SessionStore) Data(ctx context.Context, userID int64) (*domain.ConversationData, error) {
	val, err := s.client.Get(ctx, dataKey(userID)).Bytes()
	if err == redis.Nil {
		return &domain.ConversationData{}, nil
	}
	if err != nil {
		return nil, err
	}

	var data domain.ConversationData
	if err := json.Unmarshal(val, &data); err != nil {
		return &domain.ConversationData{}, nil
	}
	return &data, nil
}

// SetData stores the data bag and refreshes the session TTL
func (s *SessionStore) SetData(ctx context.Context, userID int64, data *domain.ConversationData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, dataKey(userID), raw, s.ttl).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, stateKey(userID), s.ttl).Err()
}

// Clear drops both session keys
func (s *SessionStore) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, stateKey(userID), dataKey(userID)).Err()
}
