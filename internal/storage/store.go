package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// ErrNotFound подземелье с таким id не сохранено
var ErrNotFound = errors.New("storage: dungeon not found")

// LayoutStore хранилище готовых подземелий по id.
type LayoutStore interface {
	// Save сохраняет результат генерации под res.ID. Повторное сохранение перезаписывает.
	Save(ctx context.Context, res *dungeon.Result) error

	// Load возвращает результат вместе с сеткой или ErrNotFound.
	Load(ctx context.Context, id uuid.UUID) (*dungeon.Result, error)

	// Delete удаляет результат. Отсутствие записи не ошибка.
	Delete(ctx context.Context, id uuid.UUID) error

	// List id всех сохранённых подземелий
	List(ctx context.Context) ([]uuid.UUID, error)

	Close() error
}

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// Encode сериализует снимок результата в JSON и сжимает zstd
func Encode(res *dungeon.Result) ([]byte, error) {
	data, err := json.Marshal(res.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации подземелья: %w", err)
	}
	return encoder.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}

// Decode обратная операция к Encode
func Decode(data []byte) (*dungeon.Result, error) {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки подземелья: %w", err)
	}
	var snap dungeon.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("ошибка десериализации подземелья: %w", err)
	}
	return snap.Restore()
}

func key(id uuid.UUID) []byte {
	return []byte("dungeon:" + id.String())
}
