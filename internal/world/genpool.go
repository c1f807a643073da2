package world

import (
	"sync/atomic"
	"time"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/worldgen"
)

// Generator — функция генерации чанка. Подменяется в тестах,
// по умолчанию — worldgen.Generate.
type Generator func(chunk hexmath.ChunkCoord, side int, seed int64) ([]worldgen.TileDesc, error)

// genJob — одно задание пула. Отмена кооперативная: воркер проверяет
// флаг в безопасных точках и молча отбрасывает результат.
type genJob struct {
	chunk     hexmath.ChunkCoord
	seed      int64
	side      int
	cancelled atomic.Bool
	startedAt time.Time
}

// Cancel помечает задание отмененным (например, чанк уехал за радиус
// выгрузки до завершения генерации).
func (j *genJob) Cancel() {
	j.cancelled.Store(true)
}

// genResult — готовый чанк, ждущий вставки на границе тика.
type genResult struct {
	chunk hexmath.ChunkCoord
	tiles []worldgen.TileDesc
	err   error
}

// genPool — ограниченный пул воркеров генерации чанков.
// Главный цикл НИКОГДА не ждет пул: задания кладутся неблокирующе,
// результаты опрашиваются на границе тика через Poll.
type genPool struct {
	jobs    chan *genJob
	results chan genResult
	gen     Generator
	stop    chan struct{}
}

func newGenPool(workers int, queueDepth int, gen Generator) *genPool {
	if gen == nil {
		gen = func(chunk hexmath.ChunkCoord, side int, seed int64) ([]worldgen.TileDesc, error) {
			return worldgen.Generate(chunk, side, seed), nil
		}
	}
	p := &genPool{
		jobs:    make(chan *genJob, queueDepth),
		results: make(chan genResult, queueDepth),
		gen:     gen,
		stop:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *genPool) worker() {
	for {
		select {
		case <-p.stop:
			return
		case job := <-p.jobs:
			// Точка отмены до начала работы
			if job.cancelled.Load() {
				continue
			}

			tiles, err := p.gen(job.chunk, job.side, job.seed)

			// Точка отмены после работы: результат отмененного задания
			// отбрасывается, менеджер уже забыл про этот чанк.
			if job.cancelled.Load() {
				continue
			}

			select {
			case p.results <- genResult{chunk: job.chunk, tiles: tiles, err: err}:
			case <-p.stop:
				return
			}
		}
	}
}

// Submit кладет задание неблокирующе. false = очередь пула полна,
// менеджер повторит на следующем тике.
func (p *genPool) Submit(job *genJob) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Poll забирает все готовые результаты без ожидания.
func (p *genPool) Poll() []genResult {
	var out []genResult
	for {
		select {
		case r := <-p.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Close останавливает воркеров.
func (p *genPool) Close() {
	close(p.stop)
}
