package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/internal/repo"
	"github.com/Skotchmaster/admin_dashboard/internal/testutil"
)

func seededRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	r := &repo.GormRepo{DB: testutil.InitTestDB(t)}
	require.NoError(t, r.Seed(context.Background(), repo.SeedAdmin{Email: "admin@example.com", Password: "Admin123!"}))
	return r
}

type memRedis struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMemRedis() *memRedis { return &memRedis{data: map[string]string{}} }

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := value.([]byte); ok {
		m.data[key] = string(b)
	}
	m.sets++
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *memRedis) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// memIndex is a naive substring index over client names.
type memIndex struct {
	mu      sync.Mutex
	docs    map[uint]string
	order   []uint
	failing error
}

func newMemIndex() *memIndex { return &memIndex{docs: map[uint]string{}} }

func (m *memIndex) IndexClient(_ context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[c.ID]; !ok {
		m.order = append(m.order, c.ID)
	}
	m.docs[c.ID] = strings.ToLower(c.Name + " " + c.Email)
	return nil
}

func (m *memIndex) DeleteClient(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *memIndex) SearchClients(_ context.Context, q string, limit int) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	var ids []uint
	for i := len(m.order) - 1; i >= 0 && len(ids) < limit; i-- {
		id := m.order[i]
		if doc, ok := m.docs[id]; ok && strings.Contains(doc, strings.ToLower(q)) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
