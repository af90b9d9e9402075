package ratelimiter

import (
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// bucketState is one source's token bucket.
type bucketState struct {
	tokens   float64
	lastFill int64 // Unix milliseconds
}

type Store interface {
	Get(key string) (bucketState, error)
	Set(key string, state bucketState, expiration time.Duration) error
	Close() error
}
