package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paper-grading-be/internal/entity"

	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionKey = "session:user"
	sessionTTL = 7 * 24 * time.Hour
)

// SessionCacheRepository is the durable fallback for the believed session
// state. It is a display hint only; losing it costs nothing but an extra
// login prompt.
type SessionCacheRepository struct {
	rdb *goredis.Client
}

func NewSessionCacheRepository(rdb *goredis.Client) *SessionCacheRepository {
	return &SessionCacheRepository{rdb: rdb}
}

func (r *SessionCacheRepository) Save(ctx context.Context, user *entity.SessionUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	return r.rdb.Set(ctx, sessionKey, data, sessionTTL).Err()
}

// Load returns (nil, nil) when no cached session exists.
func (r *SessionCacheRepository) Load(ctx context.Context) (*entity.SessionUser, error) {
	data, err := r.rdb.Get(ctx, sessionKey).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user entity.SessionUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal session user: %w", err)
	}
	return &user, nil
}

func (r *SessionCacheRepository) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, sessionKey).Err()
}
