package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

// BadgerStore LayoutStore поверх BadgerDB
type BadgerStore struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerStore открывает хранилище в каталоге dataPath/dungeons
func NewBadgerStore(dataPath string) (*BadgerStore, error) {
	dbPath := filepath.Join(dataPath, "dungeons")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	logging.GetStorageLogger().Info("💾 Хранилище подземелий открыто: %s", dbPath)
	return &BadgerStore{db: db, dbPath: dbPath, isReady: true}, nil
}

// Close закрывает хранилище
func (s *BadgerStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false
	return s.db.Close()
}

func (s *BadgerStore) ready() error {
	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return nil
}

func (s *BadgerStore) Save(ctx context.Context, res *dungeon.Result) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.ready(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(res)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(res.ID), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	logging.GetStorageLogger().Debug("Подземелье %s сохранено (%d байт)", res.ID, len(data))
	return nil
}

func (s *BadgerStore) Load(ctx context.Context, id uuid.UUID) (*dungeon.Result, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return Decode(data)
}

func (s *BadgerStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.ready(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}

func (s *BadgerStore) List(ctx context.Context) ([]uuid.UUID, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte("dungeon:")

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw := strings.TrimPrefix(string(it.Item().Key()), "dungeon:")
			id, err := uuid.Parse(raw)
			if err != nil {
				logging.GetStorageLogger().Warn("Некорректный ключ %q: %v", raw, err)
				continue
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода BadgerDB: %w", err)
	}
	return ids, nil
}
