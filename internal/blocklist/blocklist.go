package blocklist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/pcbfab/chat-service/internal/chat"
)

// Store хранит блокировки пользователей в Redis: ключ block:<uuid>,
// значение — JSON с причиной и сроком. TTL ключа совпадает со сроком
// блокировки, поэтому истёкшие блокировки снимаются сами.
type Store struct {
	rdb *redis.Client
}

type record struct {
	Reason string     `json:"reason"`
	Until  *time.Time `json:"until,omitempty"`
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func blockKey(userID uuid.UUID) string {
	return "block:" + userID.String()
}

func (s *Store) IsUserBlocked(ctx context.Context, userID uuid.UUID) (chat.BlockState, error) {
	val, err := s.rdb.Get(ctx, blockKey(userID)).Result()
	if err == redis.Nil {
		return chat.BlockState{}, nil
	}
	if err != nil {
		return chat.BlockState{}, err
	}

	var rec record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return chat.BlockState{}, err
	}
	return chat.BlockState{
		Blocked: true,
		Reason:  rec.Reason,
		Until:   rec.Until,
	}, nil
}

// Block блокирует пользователя. until == nil — бессрочно.
func (s *Store) Block(ctx context.Context, userID uuid.UUID, reason string, until *time.Time) error {
	raw, err := json.Marshal(record{Reason: reason, Until: until})
	if err != nil {
		return err
	}

	var ttl time.Duration
	if until != nil {
		ttl = time.Until(*until)
		if ttl <= 0 {
			return nil
		}
	}
	return s.rdb.Set(ctx, blockKey(userID), raw, ttl).Err()
}

func (s *Store) Unblock(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, blockKey(userID)).Err()
}
