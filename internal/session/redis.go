package session

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/efitness/internal/domain/account"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps sessions in Redis under "session:<id>" and lets Redis
// expire them.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisStore returns a RedisStore using client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), encodeSession(s), ttl).Err(); err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, errors.Wrap(err, "load session")
	}
	s, err := decodeSession(data)
	if err != nil {
		return Session{}, err
	}
	s.ID = id
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

func encodeSession(s Session) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("userId", func(e *jx.Encoder) { e.Int64(s.Principal.UserID) })
		e.Field("role", func(e *jx.Encoder) { e.Str(string(s.Principal.Role)) })
		e.Field("name", func(e *jx.Encoder) { e.Str(s.Principal.Name) })
		e.Field("email", func(e *jx.Encoder) { e.Str(s.Principal.Email) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(s.CreatedAt.UTC().Format(time.RFC3339Nano)) })
		e.Field("expiresAt", func(e *jx.Encoder) { e.Str(s.ExpiresAt.UTC().Format(time.RFC3339Nano)) })
	})
	return e.Bytes()
}

func decodeSession(data []byte) (Session, error) {
	var s Session
	parseTime := func(d *jx.Decoder, dst *time.Time) error {
		v, err := d.Str()
		if err != nil {
			return err
		}
		*dst, err = time.Parse(time.RFC3339Nano, v)
		return err
	}
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "userId":
			s.Principal.UserID, err = d.Int64()
		case "role":
			var role string
			role, err = d.Str()
			s.Principal.Role = account.Role(role)
		case "name":
			s.Principal.Name, err = d.Str()
		case "email":
			s.Principal.Email, err = d.Str()
		case "createdAt":
			err = parseTime(d, &s.CreatedAt)
		case "expiresAt":
			err = parseTime(d, &s.ExpiresAt)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return Session{}, errors.Wrap(err, "decode session")
	}
	return s, nil
}
