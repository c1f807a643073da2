package engine

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/config"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/diagnostics"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain/constraints"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine/handlers/actions"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/network"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/systems"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/world"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/logger"
)

// tickInterval — шаг главного цикла. Все таймеры движка считаются
// в сим-секундах от этого шага.
const tickInterval = 250 * time.Millisecond

// Service владеет всеми подсистемами ядра и гоняет главный цикл.
// Порядок фаз тика фиксирован:
//
//	стриминг чанков -> грязные слои -> ужас -> заражение ->
//	коммит брокера (на переходе уровня) -> искажения -> вехи -> аудио.
//
// Все мутации состояния происходят в горутине цикла; внешние команды
// заходят только через CommandChan.
type Service struct {
	Cfg config.Config

	Store       *world.Store
	Streaming   *world.StreamingManager
	Dread       *DreadEngine
	Broker      *systems.Broker
	Contagion   *systems.Contagion
	Milestones  *systems.MilestoneEngine
	Distortions *systems.DistortionEngine
	Audio       *systems.AudioDirector
	Psych       *systems.Psychology

	Hub  *network.Broadcaster
	Diag *diagnostics.Recorder

	Entities []*domain.Entity
	registry map[string]*domain.Entity
	Player   *domain.Entity

	CommandChan chan domain.InternalCommand

	handlers map[domain.ActionType]handlers.HandlerFunc

	tick uint64
	beat string

	// pendingCorruption — скверна из сейва, ждущая загрузки своих
	// тайлов. Применяется в TileLoaded и забывается.
	pendingCorruption map[hexmath.Hex]float64

	// outbox копит события текущего тика; рассылается одним проходом
	// в конце, чтобы подписчики видели тик целиком.
	outbox []api.CoreEvent

	// snapshot подменяется атомарно на границе тика. Debug-эндпоинты
	// читают только его: HTTP-горутины никогда не трогают живое
	// состояние симуляции.
	snapshot atomic.Pointer[DebugSnapshot]

	log  *logrus.Entry
	stop chan struct{}
	done chan struct{}
}

func NewService(cfg config.Config) *Service {
	store := world.NewStore(constraints.DefaultAdjacencyRules())

	layout := hexmath.Layout{
		Orientation: hexmath.OrientationPointy,
		Size:        1,
	}

	s := &Service{
		Cfg:         cfg,
		Store:       store,
		Dread:       NewDreadEngine(DreadConfigFrom(cfg)),
		Broker:      systems.NewBroker(),
		Contagion:   systems.NewContagion(),
		Milestones:  systems.NewMilestoneEngine(),
		Audio:       systems.NewAudioDirector(layout, rand.New(rand.NewSource(cfg.Seed))),
		Psych:       systems.NewPsychology(),
		Hub:         network.NewBroadcaster(cfg.QueueDepth),
		Diag:        diagnostics.NewRecorder(256),
		registry:    make(map[string]*domain.Entity),
		CommandChan: make(chan domain.InternalCommand, 100),
		handlers:    make(map[domain.ActionType]handlers.HandlerFunc),
		log:         logger.System("engine"),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	s.Distortions = systems.NewDistortionEngine(s.Broker)
	if err := s.Broker.RegisterSubsystem(systems.PerceptionSubsystem, systems.PerceptionBase()); err != nil {
		s.log.WithError(err).Error("perception subsystem registration")
	}

	s.Streaming = world.NewStreamingManager(store, world.StreamingConfig{
		Seed:        cfg.Seed,
		Side:        cfg.ChunkSide,
		LoadRadius:  cfg.LoadingRadius,
		MaxResident: cfg.MaxResident,
		Workers:     cfg.Workers,
		GenTimeout:  time.Duration(cfg.GenTimeoutSec * float64(time.Second)),
	}, s)

	s.registerHandlers()
	return s
}

func (s *Service) registerHandlers() {
	s.handlers[domain.ActionInit] = handlers.WithEmptyPayload(actions.HandleInit)
	s.handlers[domain.ActionMove] = handlers.WithPayload(actions.HandleMove)
	s.handlers[domain.ActionListener] = handlers.WithPayload(actions.HandleListener)
	s.handlers[domain.ActionCleanse] = handlers.WithPayload(actions.HandleCleanse)
	s.handlers[domain.ActionRegisterSource] = handlers.WithPayload(actions.HandleRegisterSource)
	s.handlers[domain.ActionNarrative] = handlers.WithPayload(actions.HandleNarrative)
	s.handlers[domain.ActionCompanionState] = handlers.WithPayload(actions.HandleCompanionState)
}

// AddEntity регистрирует сущность в симуляции. Первый игрок становится
// контекстом ужаса (уровень один на контекст игрока).
func (s *Service) AddEntity(e *domain.Entity) {
	s.Entities = append(s.Entities, e)
	s.registry[e.ID.String()] = e
	if e.Kind == enums.EntityKindPlayer && s.Player == nil {
		s.Player = e
	}
	if e.Emitter != nil && e.Emitter.Aura != nil {
		e.Emitter.Aura.Position = e.Pos
		if err := s.Dread.AttachAura(e.ID, e.Emitter.Aura); err != nil {
			s.log.WithError(err).WithField("entity", e.ID.String()).Warn("aura rejected")
		}
	}
}

// RemoveEntity убирает сущность и подметает её ауру.
func (s *Service) RemoveEntity(id string) {
	e, ok := s.registry[id]
	if !ok {
		return
	}
	delete(s.registry, id)
	for i, cur := range s.Entities {
		if cur == e {
			s.Entities = append(s.Entities[:i], s.Entities[i+1:]...)
			break
		}
	}
	s.Dread.DetachAura(e.ID)
}

// GetEntity реализует handlers.EntityFinder.
func (s *Service) GetEntity(id string) *domain.Entity {
	return s.registry[id]
}

// SetBeat реализует handlers.BeatSink.
func (s *Service) SetBeat(beat string) {
	s.beat = beat
}

// Beat возвращает текущий такт сюжета (для сейва).
func (s *Service) Beat() string { return s.beat }

// Tick возвращает номер текущего тика.
func (s *Service) Tick() uint64 { return s.tick }

// Start запускает главный цикл.
func (s *Service) Start() {
	go s.runLoop()
}

// Stop останавливает цикл и дожидается его завершения.
func (s *Service) Stop() {
	close(s.stop)
	<-s.done
	s.Streaming.Close()
}

func (s *Service) runLoop() {
	defer close(s.done)
	s.log.Info("главный цикл запущен")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	dt := tickInterval.Seconds()

	for {
		select {
		case <-s.stop:
			s.log.Info("главный цикл остановлен")
			return
		case cmd := <-s.CommandChan:
			s.executeCommand(cmd)
		case <-ticker.C:
			s.drainCommands()
			s.Advance(dt)
		}
	}
}

// drainCommands выполняет все накопившиеся команды перед тиком,
// чтобы движение и регистрация источников попали в этот же тик.
func (s *Service) drainCommands() {
	for {
		select {
		case cmd := <-s.CommandChan:
			s.executeCommand(cmd)
		default:
			return
		}
	}
}

// Advance выполняет один тик симуляции. Вынесен из цикла, чтобы тесты
// могли гонять время детерминированно.
func (s *Service) Advance(dt float64) {
	s.tick++

	playerPos := hexmath.Hex{}
	if s.Player != nil {
		playerPos = s.Player.Pos
	}

	// 1. Стриминг: вставка готовых чанков, выгрузка дальних, очередь ближних.
	s.Streaming.Tick(playerPos)
	s.markDiscovered(playerPos)

	// 2. Грязные слои -> события перерисовки.
	s.dispatchDirty()

	// 3. Движок ужаса.
	s.syncAuraPositions()
	companions := s.companions()
	transition := s.Dread.Update(dt, playerPos, companions)
	level := s.Dread.State().Level

	// 4. Заражение ужасом.
	s.advanceContagion(dt, level)

	// 5. Переход уровня: одно событие уровня + атомарный коммит брокера.
	if transition != nil {
		s.emit(api.CoreEvent{
			Type: api.EventDreadLevel,
			Tick: s.tick,
			DreadLevel: &api.DreadLevelChange{
				Level:         transition.To,
				PreviousLevel: transition.From,
				Raw:           transition.Raw,
				Stability:     transition.Stability,
			},
		})
		s.commitBroker(level)
		s.stampTileEffects(playerPos, level)
	}

	// 6. Искажения реальности. Переключение фильтров требует повторного
	// коммита текущего уровня.
	if s.Distortions.Update(dt, level, playerPos) {
		s.commitBroker(level)
	}

	// 7. Вехи.
	s.advanceMilestones(level, companions)

	// 8. Пространственное аудио.
	if s.Player != nil {
		for _, ev := range s.Audio.Update(dt, level, s.Player, companions) {
			audio := ev
			s.emit(api.CoreEvent{Type: api.EventAudio, Tick: s.tick, Audio: &audio})
		}
		if dragon := s.findDragon(); dragon != nil {
			if ev := s.Audio.DragonAudio(dragon, playerPos, level); ev != nil {
				s.emit(api.CoreEvent{Type: api.EventAudio, Tick: s.tick, Audio: ev})
			}
		}
	}

	s.flushOutbox()
	s.refreshSnapshot()
}

// DebugSnapshot — копия состояния ядра для debug-эндпоинтов.
// Значения сняты на границе тика и не меняются после публикации.
type DebugSnapshot struct {
	Tick uint64 `json:"tick"`

	Dread     domain.DreadLevelState `json:"dread"`
	Sources   []domain.DreadSource   `json:"sources"`
	Narrative float64                `json:"narrative"`
	External  float64                `json:"external"`

	Resident    []hexmath.ChunkCoord `json:"resident"`
	TileCount   int                  `json:"tileCount"`
	Loads       uint64               `json:"loads"`
	Evicts      uint64               `json:"evicts"`
	Pending     int                  `json:"pending"`
	Blacklisted int                  `json:"blacklisted"`
}

func (s *Service) refreshSnapshot() {
	loads, evicts, pending, blacklisted := s.Streaming.Stats()
	s.snapshot.Store(&DebugSnapshot{
		Tick:        s.tick,
		Dread:       s.Dread.State(),
		Sources:     s.Dread.Sources(),
		Narrative:   s.Dread.Narrative(),
		External:    s.Dread.External(),
		Resident:    s.Streaming.ResidentChunks(),
		TileCount:   s.Store.Count(),
		Loads:       loads,
		Evicts:      evicts,
		Pending:     pending,
		Blacklisted: blacklisted,
	})
}

// Snapshot возвращает последний опубликованный снимок. Безопасен из
// любой горутины; до первого тика возвращает пустой снимок.
func (s *Service) Snapshot() *DebugSnapshot {
	if snap := s.snapshot.Load(); snap != nil {
		return snap
	}
	return &DebugSnapshot{}
}

// discoveryRadius — на сколько гексов вокруг игрока тайлы считаются
// разведанными.
const discoveryRadius = 3

func (s *Service) markDiscovered(player hexmath.Hex) {
	for _, tile := range s.Store.QueryByRange(player, discoveryRadius) {
		tile.Discovered = true
	}
}

// stampTileEffects обновляет снимок эффектов ужаса на резидентных
// тайлах вокруг игрока. Значения берутся у брокера ПОСЛЕ коммита.
func (s *Service) stampTileEffects(player hexmath.Hex, level int) {
	weather := s.Broker.Params("weather")
	eff := domain.DreadEffects{
		Level:      level,
		FogDensity: weather["fogDensity"],
		Desaturate: float64(level) * 0.15,
	}
	for _, tile := range s.Store.QueryByRange(player, discoveryRadius) {
		tile.Effects = eff
		tile.Dirty = tile.Dirty.Set(domain.LayerEffects)
	}
}

// syncAuraPositions двигает ауры вслед за их носителями.
func (s *Service) syncAuraPositions() {
	for _, e := range s.Entities {
		if e.Emitter != nil && e.Emitter.Aura != nil {
			e.Emitter.Aura.Position = e.Pos
		}
	}
}

func (s *Service) companions() []*domain.Entity {
	out := make([]*domain.Entity, 0, 4)
	for _, e := range s.Entities {
		if e.Kind == enums.EntityKindCompanion {
			out = append(out, e)
		}
	}
	return out
}

func (s *Service) findDragon() *domain.Entity {
	for _, e := range s.Entities {
		if e.Kind == enums.EntityKindDragon {
			return e
		}
	}
	return nil
}

func (s *Service) dispatchDirty() {
	for coord, mask := range s.Store.ConsumeDirty() {
		layers := mask.Layers()
		names := make([]string, len(layers))
		for i, l := range layers {
			names[i] = l.String()
		}
		s.emit(api.CoreEvent{
			Type: api.EventLayerUpdate,
			Tick: s.tick,
			LayerUpdate: &api.LayerCakeUpdate{
				Coord:       api.HexView{Q: coord.Q, R: coord.R},
				DirtyLayers: names,
			},
		})
	}
}

// contagionSpreadRadius — в скольких гексах срыв компаньона заражает
// остальных.
const contagionSpreadRadius = 3

func (s *Service) advanceContagion(dt float64, level int) {
	fired := s.Contagion.Update(dt, s.Entities)
	for _, ev := range fired {
		s.applyContagionHit(ev, level)
		// Срыв экспонирует соседей половиной дозы. Соседи в окне
		// иммунитета подавляют вклад без накопления; пересекший порог
		// сосед срывается тем же путем, но дальше не распространяет
		// (цепочка продолжится не раньше следующего тика).
		for _, other := range s.Entities {
			if other == ev.Entity || other.Contagion == nil {
				continue
			}
			if hexmath.Distance(other.Pos, ev.Entity.Pos) > contagionSpreadRadius {
				continue
			}
			if s.Contagion.Expose(other, ev.Exposure/2) {
				s.applyContagionHit(systems.ContagionEvent{
					Entity:   other,
					Exposure: other.Contagion.Exposure,
				}, level)
			}
		}
	}
}

// applyContagionHit бьет сработавшим заражением по психике носителя.
func (s *Service) applyContagionHit(ev systems.ContagionEvent, level int) {
	if tr := s.Psych.ApplyTrauma(ev.Entity, enums.SourceKindPsychological, ev.Exposure, level); tr != nil {
		s.emit(api.CoreEvent{Type: api.EventTrauma, Tick: s.tick, Trauma: tr})
	}
}

func (s *Service) commitBroker(level int) {
	for _, change := range s.Broker.Commit(level) {
		s.emit(api.CoreEvent{
			Type: api.EventSystemChanged,
			Tick: s.tick,
			SystemChanged: &api.SystemDreadChanged{
				SubsystemID: change.SubsystemID,
				Params:      change.Params,
			},
		})
	}
}

func (s *Service) advanceMilestones(level int, companions []*domain.Entity) {
	achieved := s.Milestones.Evaluate(level, s.beat, companions, time.Now().UnixMilli())
	unlocked := false
	for _, ms := range achieved {
		s.emit(api.CoreEvent{
			Type:      api.EventMilestone,
			Tick:      s.tick,
			Milestone: &api.MilestoneAchieved{ID: ms.ID, AchievedAt: ms.AchievedAt},
		})
		if s.applyMilestoneEffects(ms) {
			unlocked = true
		}
	}
	// Разблокированная модификация вступает в силу этим же тиком,
	// не дожидаясь постороннего перехода уровня.
	if unlocked {
		s.commitBroker(level)
	}
}

// applyMilestoneEffects применяет эффекты вехи. Возвращает true, если
// включилась хотя бы одна модификация брокера (нужен повторный коммит).
func (s *Service) applyMilestoneEffects(ms *domain.Milestone) bool {
	unlocked := false
	for _, eff := range ms.Effects {
		switch eff.Kind {
		case domain.MilestoneEffectSystemUnlock:
			// Target: "<subsystem>/<source-id>".
			target, source := splitEffectTarget(eff.Target)
			if s.Broker.SetEnabled(target, source, true) {
				unlocked = true
			} else {
				s.log.WithField("target", eff.Target).Warn("веха: неизвестная модификация")
			}
		case domain.MilestoneEffectNarrativeBranch:
			s.beat = eff.Target
		case domain.MilestoneEffectCompanionEvent:
			if c := s.registry[eff.Target]; c != nil {
				if tr := s.Psych.ApplyTrauma(c, enums.SourceKindNarrative, 0.3, s.Dread.State().Level); tr != nil {
					s.emit(api.CoreEvent{Type: api.EventTrauma, Tick: s.tick, Trauma: tr})
				}
			}
		}
	}
	return unlocked
}

func splitEffectTarget(t string) (subsystem, source string) {
	for i := 0; i < len(t); i++ {
		if t[i] == '/' {
			return t[:i], t[i+1:]
		}
	}
	return t, ""
}

// --- Команды ---

// ProcessCommand принимает команду от внешнего мира (WebSocket).
func (s *Service) ProcessCommand(externalCmd api.ClientCommand) {
	actionType := domain.ParseAction(externalCmd.Action)
	if actionType == domain.ActionUnknown {
		s.log.WithField("action", externalCmd.Action).Warn("неизвестное действие")
		s.Diag.Record(api.DiagnosticRecord{
			Kind:   diagnostics.KindCommandRejected,
			Detail: "unknown action: " + externalCmd.Action,
			Tick:   s.tick,
		})
		return
	}

	s.CommandChan <- domain.InternalCommand{
		Action:  actionType,
		Token:   externalCmd.Token,
		Payload: externalCmd.Payload,
	}
}

// executeCommand выполняет хендлер и раскладывает результат.
func (s *Service) executeCommand(cmd domain.InternalCommand) {
	handler, ok := s.handlers[cmd.Action]
	if !ok {
		return
	}

	actor := s.registry[cmd.Token]
	if actor == nil {
		actor = s.Player
	}

	ctx := handlers.Context{
		Finder: s,
		Store:  s.Store,
		Dread:  s.Dread,
		Beats:  s,
		Psych:  s.Psych,
		Actor:  actor,
		Tick:   s.tick,
	}

	result, err := handler(ctx, cmd.Payload)
	if err != nil {
		s.log.WithError(err).WithField("action", cmd.Action.String()).Warn("команда отклонена")
		s.Diag.Record(api.DiagnosticRecord{
			Kind:   diagnostics.KindCommandRejected,
			Detail: cmd.Action.String() + ": " + err.Error(),
			Tick:   s.tick,
		})
		return
	}

	if result.Msg != "" {
		s.log.WithField("type", result.MsgType).Info(result.Msg)
	}
	for _, ev := range result.Events {
		s.Hub.Broadcast(ev)
	}
}

// --- world.EventSink ---

func (s *Service) TileLoaded(tile *domain.LayerCakeTile) {
	if want, ok := s.pendingCorruption[tile.Coord]; ok {
		delete(s.pendingCorruption, tile.Coord)
		if delta := want - tile.Corruption; delta > 0 {
			if err := s.Store.ApplyCorruption(tile.Coord, delta); err != nil {
				s.log.WithError(err).Warn("восстановление скверны")
			}
		}
	}
	s.emit(api.CoreEvent{
		Type: api.EventTileLoad,
		Tick: s.tick,
		TileLoad: &api.TileLoadEvent{
			Coord: api.HexView{Q: tile.Coord.Q, R: tile.Coord.R},
			Layers: api.TileLayers{
				Biome:   tile.Biome.String(),
				Path:    tile.Path.String(),
				Feature: tile.Feature.String(),
			},
			Corruption: tile.Corruption,
		},
	})
}

func (s *Service) TileUnloaded(coord hexmath.Hex) {
	s.emit(api.CoreEvent{
		Type:       api.EventTileUnload,
		Tick:       s.tick,
		TileUnload: &api.TileUnloadEvent{Coord: api.HexView{Q: coord.Q, R: coord.R}},
	})
}

func (s *Service) TileRejected(coord hexmath.Hex, err error) {
	s.Diag.Record(api.DiagnosticRecord{
		Kind:   diagnostics.KindTileRejected,
		Detail: err.Error(),
		Tick:   s.tick,
		ChunkQ: coord.Q,
		ChunkR: coord.R,
	})
}

func (s *Service) ChunkFailed(chunk hexmath.ChunkCoord, err error, blacklisted bool) {
	kind := diagnostics.KindChunkFailed
	if blacklisted {
		kind = diagnostics.KindChunkBlacklisted
	}
	s.Diag.Record(api.DiagnosticRecord{
		Kind:   kind,
		Detail: err.Error(),
		Tick:   s.tick,
		ChunkQ: chunk.Q,
		ChunkR: chunk.R,
	})
}

// --- Исходящие события ---

func (s *Service) emit(ev api.CoreEvent) {
	s.outbox = append(s.outbox, ev)
}

func (s *Service) flushOutbox() {
	for _, ev := range s.outbox {
		s.Hub.Broadcast(ev)
	}
	s.outbox = s.outbox[:0]
}
