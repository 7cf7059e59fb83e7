package cache

import (
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get decodes the stored bytes into value, which must be a *string,
	// a *[]byte or an encoding.BinaryUnmarshaler.
	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	CleanupInterval time.Duration

	RedisURL string

	RedisPassword string

	RedisDB int

	// KeyPrefix namespaces keys in shared backends.
	KeyPrefix string
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute * 5,
		KeyPrefix:       "dashboard:",
	}
}

// Entry is a fetched remote asset as stored in a Cache.
type Entry struct {
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	FetchedAt   time.Time `json:"fetched_at"`
}

func (e Entry) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Entry) UnmarshalBinary(b []byte) error {
	return json.Unmarshal(b, e)
}

// Encode turns a value accepted by Set into bytes.
func Encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		return nil, ErrInvalidValue
	}
}

// Decode writes raw into a value accepted by Get.
func Decode(raw []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(raw)
	case *[]byte:
		*v = append((*v)[:0], raw...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(raw)
	default:
		return ErrInvalidValue
	}
	return nil
}
