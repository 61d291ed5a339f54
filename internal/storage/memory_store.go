package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/google/uuid"
)

// MemoryStore LayoutStore в памяти. Для тестов и запуска без каталога данных.
// Данные теряются при перезапуске.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID][]byte
}

// NewMemoryStore создаёт пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[uuid.UUID][]byte)}
}

// Save хранит сжатый снимок, чтобы Load возвращал независимую копию
func (s *MemoryStore) Save(ctx context.Context, res *dungeon.Result) error {
	if res.ID == uuid.Nil {
		return fmt.Errorf("недействительный id подземелья")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(res)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[res.ID] = data
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id uuid.UUID) (*dungeon.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return Decode(data)
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }
