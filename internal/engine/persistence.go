package engine

import (
	"sort"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/infrastructure/storage"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// BuildSnapshot собирает сохраняемое состояние сессии.
// Все коллекции отсортированы: одинаковое состояние дает одинаковый файл.
func (s *Service) BuildSnapshot() *storage.Snapshot {
	snap := &storage.Snapshot{
		Seed:            s.Cfg.Seed,
		Tick:            s.tick,
		Beat:            s.beat,
		Dread:           s.Dread.State(),
		Narrative:       s.Dread.Narrative(),
		External:        s.Dread.External(),
		Sources:         s.Dread.Sources(),
		ResidentChunks:  s.Streaming.ResidentChunks(),
		BrokerOriginals: s.Broker.Originals(),
	}
	if s.Player != nil {
		snap.PlayerPos = s.Player.Pos
	}

	sort.Slice(snap.Sources, func(i, j int) bool {
		return snap.Sources[i].ID < snap.Sources[j].ID
	})

	// Сохраняются только отклонения скверны: сам мир детерминирован сидом.
	s.Store.Each(func(t *domain.LayerCakeTile) {
		if t.Corruption > 0 {
			snap.Corruption = append(snap.Corruption, storage.TileCorruption{
				Q: t.Coord.Q, R: t.Coord.R, Value: t.Corruption,
			})
		}
	})
	sort.Slice(snap.Corruption, func(i, j int) bool {
		a, b := snap.Corruption[i], snap.Corruption[j]
		if a.Q != b.Q {
			return a.Q < b.Q
		}
		return a.R < b.R
	})

	for _, ms := range s.Milestones.Achieved() {
		snap.Milestones = append(snap.Milestones, storage.MilestoneRecord{
			ID: ms.ID, AchievedAt: ms.AchievedAt,
		})
	}

	for _, c := range s.companions() {
		snap.Companions = append(snap.Companions, storage.CompanionRecord{
			ID:         c.ID.String(),
			Name:       c.Name,
			Pos:        c.Pos,
			Psyche:     c.Psyche,
			Resistance: c.Resistance,
			Contagion:  c.Contagion,
		})
	}
	sort.Slice(snap.Companions, func(i, j int) bool {
		return snap.Companions[i].ID < snap.Companions[j].ID
	})

	return snap
}

// RestoreSnapshot накатывает сейв на свежесобранный сервис.
// Вызывается ДО Start: цикл еще не бежит, стриминг догрузит мир вокруг
// восстановленной позиции игрока на первых тиках.
func (s *Service) RestoreSnapshot(snap *storage.Snapshot) {
	s.tick = snap.Tick
	s.beat = snap.Beat

	s.Dread.RestoreState(snap.Dread, snap.Narrative, snap.External)
	for _, src := range snap.Sources {
		if err := s.Dread.RegisterSource(src); err != nil {
			s.log.WithError(err).WithField("source", src.ID).Warn("источник из сейва отклонен")
		}
	}

	for _, ms := range snap.Milestones {
		s.Milestones.Restore(ms.ID, ms.AchievedAt)
	}
	s.Broker.RestoreOriginals(snap.BrokerOriginals)

	s.pendingCorruption = make(map[hexmath.Hex]float64, len(snap.Corruption))
	for _, c := range snap.Corruption {
		s.pendingCorruption[hexmath.Hex{Q: c.Q, R: c.R}] = c.Value
	}

	if s.Player != nil {
		s.Player.Pos = snap.PlayerPos
	}
	for _, rec := range snap.Companions {
		c := s.registry[rec.ID]
		if c == nil {
			continue
		}
		c.Pos = rec.Pos
		if rec.Psyche != nil {
			c.Psyche = rec.Psyche
		}
		if rec.Resistance != nil {
			c.Resistance = rec.Resistance
		}
		if rec.Contagion != nil {
			c.Contagion = rec.Contagion
		}
	}
}
