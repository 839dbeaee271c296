package cache

import (
	"context"
	"time"
)

// NullCache keeps nothing: every Get misses and Keys is always empty. It
// backs --no-cache and the "none" backend.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Keys(context.Context, string) ([]string, error) { return nil, nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
