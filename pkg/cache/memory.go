package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// item 缓存项
type item struct {
	value      []byte
	expiration int64 // UnixNano，0表示永不过期
}

func (i *item) expired(now int64) bool {
	return i.expiration != 0 && now > i.expiration
}

// MemoryStore 进程内缓存
type MemoryStore struct {
	prefix string
	items  map[string]*item
	mu     sync.RWMutex

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewMemoryStore 创建进程内缓存，cleanupInterval > 0 时定期清理过期项
func NewMemoryStore(prefix string, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		prefix:      prefix,
		items:       make(map[string]*item),
		stopCleanup: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go s.cleanupLoop(cleanupInterval)
	}
	return s
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.DeleteExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

// GetJSON 读取缓存
func (s *MemoryStore) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	key = prefixed(s.prefix, key)

	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if it.expired(time.Now().UnixNano()) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(it.value, dest); err != nil {
		return false, fmt.Errorf("unmarshal cache %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 写入缓存，ttl <= 0 表示永不过期
func (s *MemoryStore) SetJSON(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}

	s.mu.Lock()
	s.items[prefixed(s.prefix, key)] = &item{value: data, expiration: exp}
	s.mu.Unlock()
	return nil
}

// Delete 删除缓存
func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.items, prefixed(s.prefix, key))
	}
	s.mu.Unlock()
	return nil
}

// DeleteExpired 清理过期项
func (s *MemoryStore) DeleteExpired() {
	now := time.Now().UnixNano()

	s.mu.Lock()
	for key, it := range s.items {
		if it.expired(now) {
			delete(s.items, key)
		}
	}
	s.mu.Unlock()
}

// Len 缓存项数量(含未清理的过期项)
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close 停止清理协程
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() { close(s.stopCleanup) })
}
