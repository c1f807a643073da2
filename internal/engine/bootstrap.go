package engine

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/core/types/enums"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/systems"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// Bootstrap заселяет свежий мир стартовым контекстом: игрок, отряд,
// дракон в логове и базовые подсистемы брокера. Вызывается один раз
// до Start, на сейв не накатывается — RestoreSnapshot перекроет позиции
// и психику.
func (s *Service) Bootstrap() {
	player := &domain.Entity{
		ID:   types.PackEntityID(0, uint8(enums.EntityKindPlayer), 0, 1),
		Kind: enums.EntityKindPlayer,
		Name: "Странник",
		Pos:  hexmath.Hex{Q: 0, R: 0},
		Psyche: &domain.CompanionPsyche{
			BreakingPoint: 1.0,
			Loyalty:       1.0,
			Trust:         1.0,
			Sanity:        1.0,
			State:         enums.CompanionStateNormal,
		},
		Equipment: &domain.EquipmentComponent{
			BiomeOverrides: map[domain.Biome]float64{},
		},
	}
	s.AddEntity(player)

	companions := []struct {
		name string
		pos  hexmath.Hex
	}{
		{"Мира", hexmath.Hex{Q: 1, R: 0}},
		{"Тенн", hexmath.Hex{Q: 0, R: 1}},
	}
	for i, c := range companions {
		s.AddEntity(&domain.Entity{
			ID:   types.PackEntityID(0, uint8(enums.EntityKindCompanion), 0, uint32(10+i)),
			Kind: enums.EntityKindCompanion,
			Name: c.name,
			Pos:  c.pos,
			Psyche: &domain.CompanionPsyche{
				BreakingPoint: 0.9,
				Loyalty:       0.7,
				Trust:         0.7,
				Sanity:        1.0,
				State:         enums.CompanionStateNormal,
			},
			Resistance: &domain.DreadResistance{
				Base:               0.2,
				BreakdownThreshold: 0.3,
				RecoveryRate:       0.05,
			},
			Contagion: &domain.ContagionState{
				Threshold:        0.5,
				Recovery:         0.1,
				ImmunityDuration: 5,
			},
		})
	}

	// Дракон — далекий доминирующий источник пространственного ужаса.
	dragonPos := hexmath.Hex{Q: 60, R: -20}
	s.AddEntity(&domain.Entity{
		ID:   types.PackEntityID(0, uint8(enums.EntityKindDragon), 0, 2),
		Kind: enums.EntityKindDragon,
		Name: "Дракон",
		Pos:  dragonPos,
		Emitter: &domain.EmitterComponent{
			Aura: &domain.DreadAura{
				Position:      dragonPos,
				BaseIntensity: 3.0,
				Current:       3.0,
				Radius:        40,
				Curve:         domain.FalloffInverseSquare,
				Pulse: &domain.Pulse{
					Period:    8,
					Amplitude: 0.2,
					Shape:     domain.PulseSine,
				},
			},
		},
	})

	s.registerDefaultSubsystems()
	s.registerDefaultMilestones()
	s.registerDefaultDistortions()
}

// Подсистемы, которыми брокер управляет на каждом переходе уровня.
func (s *Service) registerDefaultSubsystems() {
	defs := []struct {
		id   string
		base map[string]float64
		mods []systems.Registration
	}{
		{
			id:   "weather",
			base: map[string]float64{"fogDensity": 0.1, "windHowl": 0},
			mods: []systems.Registration{{
				SourceID:   "dread/fog",
				Target:     "weather",
				Priority:   1,
				Reversible: true,
				Modifiers: []systems.ParamModifier{{
					Param:    "fogDensity",
					Stacking: systems.StackAdd,
					Levels:   [5]float64{0, 0.1, 0.25, 0.45, 0.7},
				}},
			}},
		},
		{
			id:   "audio_mix",
			base: map[string]float64{"ambienceGain": 1.0, "heartbeat": 0},
			mods: []systems.Registration{{
				SourceID:   "dread/mix",
				Target:     "audio_mix",
				Priority:   1,
				Reversible: true,
				Modifiers: []systems.ParamModifier{
					{
						Param:    "ambienceGain",
						Stacking: systems.StackMultiply,
						Levels:   [5]float64{1, 1, 0.9, 0.75, 0.6},
					},
					{
						Param:    "heartbeat",
						Stacking: systems.StackReplace,
						Levels:   [5]float64{0, 0, 0.3, 0.6, 1},
					},
				},
			}},
		},
		{
			id:   "spawning",
			base: map[string]float64{"hostileRate": 1.0},
			mods: []systems.Registration{{
				SourceID:   "dread/spawns",
				Target:     "spawning",
				Priority:   1,
				Reversible: true,
				Modifiers: []systems.ParamModifier{{
					Param:    "hostileRate",
					Stacking: systems.StackMultiply,
					Levels:   [5]float64{1, 1.2, 1.5, 2, 3},
				}},
			}},
		},
	}

	for _, d := range defs {
		if err := s.Broker.RegisterSubsystem(d.id, d.base); err != nil {
			s.log.WithError(err).WithField("subsystem", d.id).Error("bootstrap subsystem")
			continue
		}
		for _, mod := range d.mods {
			if err := s.Broker.Register(mod); err != nil {
				s.log.WithError(err).WithField("source", mod.SourceID).Error("bootstrap modifier")
			}
		}
	}

	// Уровень 0 — зафиксировать базу как текущие параметры.
	s.Broker.Commit(0)
}

func (s *Service) registerDefaultMilestones() {
	s.Milestones.Add(&domain.Milestone{
		ID:            "first-dread",
		RequiredLevel: 1,
	})
	s.Milestones.Add(&domain.Milestone{
		ID:            "the-terror-begins",
		RequiredLevel: 3,
		Conditions:    domain.MilestoneConditions{NarrativeBeat: "descent"},
		Effects: []domain.MilestoneEffect{
			{Kind: domain.MilestoneEffectNarrativeBranch, Target: "no-way-back"},
		},
	})
	s.Milestones.Add(&domain.Milestone{
		ID:            "companion-on-the-edge",
		RequiredLevel: 2,
		Conditions:    domain.MilestoneConditions{MinCompanionTrauma: 0.6},
		Reversible:    true,
	})
}

func (s *Service) registerDefaultDistortions() {
	region := &domain.RealityDistortion{
		ID:            "nest-perimeter",
		Kind:          enums.DistortionKindPerceptual,
		Center:        hexmath.Hex{Q: 60, R: -20},
		Radius:        10,
		Intensity:     0.8,
		RequiredLevel: 3,
		Manifestations: []*domain.Manifestation{
			{ID: "whispers", Trigger: systems.TriggerEnter, Duration: 6},
			{ID: "bleeding-walls", Trigger: systems.TriggerLinger, Duration: 4},
		},
	}
	if err := s.Distortions.AddRegion(region); err != nil {
		s.log.WithError(err).Error("bootstrap distortion")
	}
}
