package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/orderedmap"
)

// SaveService пишет и читает снапшоты в каталоге SaveDir.
type SaveService struct {
	SaveDir string
}

func NewSaveService(dir string) *SaveService {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		_ = os.MkdirAll(dir, 0755)
	}
	return &SaveService{SaveDir: dir}
}

// Save атомарно записывает снапшот: сначала во временный файл,
// затем rename. Полусохраненный файл никогда не виден читателю.
func (s *SaveService) Save(name string, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	path := filepath.Join(s.SaveDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("save write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save rename: %w", err)
	}
	return nil
}

// Encode сериализует снапшот в канонический keyed-документ.
// Если снапшот был загружен из файла, неизвестные ключи исходного
// документа сохраняются на своих местах: save -> load -> save дает
// байт-в-байт тот же файл.
func Encode(snap *Snapshot) ([]byte, error) {
	doc := orderedmap.New()
	if snap.raw != nil {
		if err := json.Unmarshal(snap.raw, doc); err != nil {
			return nil, fmt.Errorf("snapshot raw: %w", err)
		}
	}

	doc.Set("format", FormatMarker)
	doc.Set("version", Version1)
	doc.Set("seed", snap.Seed)
	doc.Set("tick", snap.Tick)
	doc.Set("beat", snap.Beat)
	doc.Set("playerPos", snap.PlayerPos)
	doc.Set("dread", snap.Dread)
	doc.Set("narrative", snap.Narrative)
	doc.Set("external", snap.External)
	doc.Set("sources", snap.Sources)
	doc.Set("residentChunks", snap.ResidentChunks)
	doc.Set("corruption", snap.Corruption)
	doc.Set("milestones", snap.Milestones)
	doc.Set("brokerOriginals", snap.BrokerOriginals)
	doc.Set("companions", snap.Companions)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot marshal: %w", err)
	}
	return append(data, '\n'), nil
}
