package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
)

// header — минимум, нужный для проверки формата до полного разбора.
type header struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
}

// Load читает снапшот. Нечитаемый или чужой файл дает
// ErrPersistenceCorrupt: хостящее приложение решает, начинать ли
// свежий мир (exit code 3 у эталонного сервера).
func (s *SaveService) Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode разбирает keyed-документ снапшота.
func Decode(data []byte) (*Snapshot, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceCorrupt, err)
	}
	if h.Format != FormatMarker {
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrPersistenceCorrupt, h.Format)
	}
	if h.Version != Version1 {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrPersistenceCorrupt, h.Version)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceCorrupt, err)
	}

	// Исходный документ сохраняется целиком: неизвестные ключи
	// вернутся в файл при следующем Save.
	snap.raw = data
	return &snap, nil
}
