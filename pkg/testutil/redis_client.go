package testutil

import (
	"context"
	"errors"
	"sync"
)

// MockRedisClient is an in-memory stand-in for xredis.Client.
type MockRedisClient struct {
	mutex  sync.RWMutex
	values map[string]string
}

var errRedisNil = errors.New("redis: nil")

func (c *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	_, ok := c.values[key]
	return ok, nil
}

func (c *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	value, ok := c.values[key]
	if !ok {
		return "", errRedisNil
	}

	return value, nil
}

func (c *MockRedisClient) Set(ctx context.Context, key, value string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.values == nil {
		c.values = make(map[string]string)
	}

	c.values[key] = value
	return nil
}

func (c *MockRedisClient) Del(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.values, key)
	return nil
}
