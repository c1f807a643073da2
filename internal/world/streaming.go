package world

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/logger"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/utils"
)

// EventSink получает события стриминга. Реализуется сервисом,
// который раскладывает их по подписчикам и диагностике.
type EventSink interface {
	// TileLoaded вызывается ПОСЛЕ полной вставки тайла.
	TileLoaded(tile *domain.LayerCakeTile)
	// TileUnloaded вызывается ДО деспавна тайла.
	TileUnloaded(coord hexmath.Hex)
	// TileRejected — тайл пропущен (нарушение соседства биомов). Не фатально.
	TileRejected(coord hexmath.Hex, err error)
	// ChunkFailed — генерация чанка не удалась; blacklisted=true после
	// третьей попытки (чанк исключен до конца сессии).
	ChunkFailed(chunk hexmath.ChunkCoord, err error, blacklisted bool)
}

// StreamingConfig — параметры стриминга.
type StreamingConfig struct {
	Seed        int64
	Side        int // C, сторона чанка в гексах
	LoadRadius  int // R_load
	MaxResident int // N_max, бюджет резидентных тайлов
	Workers     int
	QueueDepth  int
	GenTimeout  time.Duration
	Generator   Generator // nil = worldgen.Generate
}

// retryState — состояние "частичного" чанка между попытками.
type retryState struct {
	attempts  int
	nextRetry time.Time
}

const (
	maxChunkAttempts = 3
	retryBackoffBase = 2 * time.Second
)

// StreamingManager загружает чанки вокруг игрока и выгружает дальние.
//
// Протокол тика:
//  1. забрать готовые результаты генерации и вставить тайлы;
//  2. выгрузить чанки с расстоянием Чебышёва > 2·R_load;
//  3. поставить в очередь чанки с расстоянием <= R_load (ближние раньше);
//  4. при превышении бюджета N_max отложить самые низкоприоритетные загрузки.
//
// Менеджер однопоточный по записи: все методы зовет главный цикл.
type StreamingManager struct {
	store *Store
	pool  *genPool
	cfg   StreamingConfig

	// resident: чанк -> ключи его тайлов. Членство фиксируется при
	// загрузке; тайл не принадлежит двум чанкам.
	resident map[hexmath.ChunkCoord][]hexmath.Hex

	// pending — одновходовый шлюз: чанк никогда не генерируется дважды
	// параллельно.
	pending map[hexmath.ChunkCoord]*genJob

	partial   map[hexmath.ChunkCoord]*retryState
	blacklist map[hexmath.ChunkCoord]bool

	sink EventSink

	// clock подменяется в тестах.
	clock func() time.Time

	loadsTotal  uint64
	evictsTotal uint64
}

func NewStreamingManager(store *Store, cfg StreamingConfig, sink EventSink) *StreamingManager {
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.GenTimeout <= 0 {
		cfg.GenTimeout = 5 * time.Second
	}
	return &StreamingManager{
		store:     store,
		pool:      newGenPool(cfg.Workers, cfg.QueueDepth, cfg.Generator),
		cfg:       cfg,
		resident:  make(map[hexmath.ChunkCoord][]hexmath.Hex),
		pending:   make(map[hexmath.ChunkCoord]*genJob),
		partial:   make(map[hexmath.ChunkCoord]*retryState),
		blacklist: make(map[hexmath.ChunkCoord]bool),
		sink:      sink,
		clock:     time.Now,
	}
}

// Close останавливает пул генерации.
func (m *StreamingManager) Close() {
	m.pool.Close()
}

// Tick выполняет полный протокол стриминга для позиции игрока.
func (m *StreamingManager) Tick(player hexmath.Hex) {
	m.insertCompleted()
	m.expirePending()

	playerChunk := hexmath.ChunkOf(player, m.cfg.Side)
	m.evictFar(playerChunk)
	m.enqueueNear(playerChunk)
}

// insertCompleted вставляет готовые чанки. Вызывается на границе тика:
// подсистемы никогда не видят наполовину вставленный чанк.
func (m *StreamingManager) insertCompleted() {
	for _, res := range m.pool.Poll() {
		job, ok := m.pending[res.chunk]
		if !ok || job.cancelled.Load() {
			// Чанк успели отменить (уехал за радиус) — результат отброшен.
			continue
		}
		delete(m.pending, res.chunk)

		if res.err != nil {
			m.failChunk(res.chunk, fmt.Errorf("%w: %v", domain.ErrChunkGenerationFailed, res.err))
			continue
		}

		members := make([]hexmath.Hex, 0, len(res.tiles))
		for _, desc := range res.tiles {
			tile, err := m.store.LoadTile(desc)
			if err != nil {
				if errors.Is(err, domain.ErrBiomeAdjacencyViolation) {
					// Повторяем с биомом соседа: шов между чанками
					// сглаживается в пользу уже резидентного мира.
					desc.Biome = m.neighborBiome(desc.Coord)
					if tile, err = m.store.LoadTile(desc); err == nil {
						members = append(members, desc.Coord)
						m.sink.TileLoaded(tile)
						continue
					}
				}
				m.sink.TileRejected(desc.Coord, err)
				continue
			}
			members = append(members, desc.Coord)
			m.sink.TileLoaded(tile)
		}

		m.resident[res.chunk] = members
		delete(m.partial, res.chunk)
		m.loadsTotal++
	}
}

// neighborBiome возвращает биом любого резидентного соседа (для
// сглаживания швов). Fallback — равнина, совместимая со всеми.
func (m *StreamingManager) neighborBiome(coord hexmath.Hex) domain.Biome {
	for _, n := range coord.Neighbors() {
		if t := m.store.Get(n); t != nil {
			return t.Biome
		}
	}
	return domain.BiomePlains
}

// expirePending отменяет задания, не уложившиеся в бюджет времени.
func (m *StreamingManager) expirePending() {
	now := m.clock()
	for chunk, job := range m.pending {
		if now.Sub(job.startedAt) < m.cfg.GenTimeout {
			continue
		}
		job.Cancel()
		delete(m.pending, chunk)
		m.failChunk(chunk, domain.ErrChunkGenerationTimeout)
	}
}

// failChunk переводит чанк в partial с backoff; после трех попыток —
// в черный список сессии. Паники нет: ошибка уходит в диагностику.
func (m *StreamingManager) failChunk(chunk hexmath.ChunkCoord, err error) {
	state := m.partial[chunk]
	if state == nil {
		state = &retryState{}
		m.partial[chunk] = state
	}
	state.attempts++

	if state.attempts >= maxChunkAttempts {
		delete(m.partial, chunk)
		m.blacklist[chunk] = true
		m.sink.ChunkFailed(chunk, err, true)
		logger.System("streaming").WithField("chunk", chunk).
			WithError(err).Error("Chunk blacklisted for the session")
		return
	}

	// Экспоненциальный backoff: 2с, 4с, ...
	backoff := retryBackoffBase << (state.attempts - 1)
	state.nextRetry = m.clock().Add(backoff)
	m.sink.ChunkFailed(chunk, err, false)
}

// evictFar выгружает чанки за пределами 2·R_load.
// Порядок строго по убыванию расстояния, при равенстве — по
// детерминированному хешу координаты: эвикция воспроизводима.
func (m *StreamingManager) evictFar(playerChunk hexmath.ChunkCoord) {
	limit := 2 * m.cfg.LoadRadius

	var victims []hexmath.ChunkCoord
	for chunk := range m.resident {
		if hexmath.Chebyshev(chunk, playerChunk) > limit {
			victims = append(victims, chunk)
		}
	}
	sort.Slice(victims, func(i, j int) bool {
		di := hexmath.Chebyshev(victims[i], playerChunk)
		dj := hexmath.Chebyshev(victims[j], playerChunk)
		if di != dj {
			return di > dj
		}
		return victims[i].Hash() < victims[j].Hash()
	})

	for _, chunk := range victims {
		// TileUnloadEvent уходит ДО деспавна: потребители успевают
		// сохранить своё состояние по тайлу.
		for _, coord := range m.resident[chunk] {
			m.sink.TileUnloaded(coord)
			m.store.Remove(coord)
		}
		delete(m.resident, chunk)
		m.evictsTotal++
	}

	// Отмена заданий, уехавших за радиус до завершения.
	for chunk, job := range m.pending {
		if hexmath.Chebyshev(chunk, playerChunk) > limit {
			job.Cancel()
			delete(m.pending, chunk)
		}
	}
}

// enqueueNear ставит в очередь чанки в радиусе загрузки.
// Приоритет = R_load − расстояние: ближние раньше. Когда бюджет тайлов
// исчерпан, самые низкоприоритетные загрузки откладываются.
func (m *StreamingManager) enqueueNear(playerChunk hexmath.ChunkCoord) {
	now := m.clock()
	tilesPerChunk := m.cfg.Side * m.cfg.Side

	type candidate struct {
		chunk hexmath.ChunkCoord
		dist  int
	}
	var candidates []candidate

	for dq := -m.cfg.LoadRadius; dq <= m.cfg.LoadRadius; dq++ {
		for dr := -m.cfg.LoadRadius; dr <= m.cfg.LoadRadius; dr++ {
			chunk := hexmath.ChunkCoord{Q: playerChunk.Q + dq, R: playerChunk.R + dr}
			if _, ok := m.resident[chunk]; ok {
				continue
			}
			if _, ok := m.pending[chunk]; ok {
				continue
			}
			if m.blacklist[chunk] {
				continue
			}
			if state, ok := m.partial[chunk]; ok && now.Before(state.nextRetry) {
				continue
			}
			candidates = append(candidates, candidate{
				chunk: chunk,
				dist:  hexmath.Chebyshev(chunk, playerChunk),
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].chunk.Hash() < candidates[j].chunk.Hash()
	})

	budgeted := m.store.Count() + len(m.pending)*tilesPerChunk
	for _, c := range candidates {
		if budgeted+tilesPerChunk > m.cfg.MaxResident {
			// Бюджет исчерпан: оставшиеся (низкоприоритетные) откладываются.
			return
		}
		job := &genJob{
			chunk:     c.chunk,
			seed:      utils.ChunkSeed(m.cfg.Seed, c.chunk.Q, c.chunk.R),
			side:      m.cfg.Side,
			startedAt: now,
		}
		if !m.pool.Submit(job) {
			// Очередь пула полна — остальное подождет следующего тика.
			return
		}
		m.pending[c.chunk] = job
		budgeted += tilesPerChunk
	}
}

// ResidentChunks возвращает отсортированный список резидентных чанков
// (стабильный порядок нужен каноническому сейву).
func (m *StreamingManager) ResidentChunks() []hexmath.ChunkCoord {
	out := make([]hexmath.ChunkCoord, 0, len(m.resident))
	for chunk := range m.resident {
		out = append(out, chunk)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Q != out[j].Q {
			return out[i].Q < out[j].Q
		}
		return out[i].R < out[j].R
	})
	return out
}

// Stats возвращает счетчики для диагностики.
func (m *StreamingManager) Stats() (loads, evicts uint64, pending, blacklisted int) {
	return m.loadsTotal, m.evictsTotal, len(m.pending), len(m.blacklist)
}

// IsResident проверяет, загружен ли чанк.
func (m *StreamingManager) IsResident(chunk hexmath.ChunkCoord) bool {
	_, ok := m.resident[chunk]
	return ok
}
