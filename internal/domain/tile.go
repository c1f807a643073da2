package domain

import (
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/hexmath"
)

// Layer — слой "слоеного пирога" тайла.
// Визуальное и логическое состояние тайла складывается из независимых слоев.
type Layer uint8

const (
	LayerBiome Layer = iota
	LayerPath
	LayerFeature
	LayerCorruption
	LayerEffects

	layerCount
)

var layerToString = map[Layer]string{
	LayerBiome:      "biome",
	LayerPath:       "path",
	LayerFeature:    "feature",
	LayerCorruption: "corruption",
	LayerEffects:    "effects",
}

func (l Layer) String() string {
	if val, ok := layerToString[l]; ok {
		return val
	}
	return "unknown"
}

// DirtyMask — битовая маска слоев, требующих перерисовки.
type DirtyMask uint8

// Set помечает слой грязным.
func (m DirtyMask) Set(l Layer) DirtyMask {
	return m | (1 << l)
}

// Has проверяет, помечен ли слой.
func (m DirtyMask) Has(l Layer) bool {
	return m&(1<<l) != 0
}

// Layers разворачивает маску в список слоев (для событий рендера).
func (m DirtyMask) Layers() []Layer {
	var result []Layer
	for l := Layer(0); l < layerCount; l++ {
		if m.Has(l) {
			result = append(result, l)
		}
	}
	return result
}

// PathKind — необязательный слой тропы.
type PathKind uint8

const (
	PathNone PathKind = iota
	PathTrail
	PathRoad
	PathBridge
)

func (p PathKind) String() string {
	switch p {
	case PathTrail:
		return "trail"
	case PathRoad:
		return "road"
	case PathBridge:
		return "bridge"
	default:
		return ""
	}
}

// FeatureKind — необязательный слой объекта на тайле.
type FeatureKind uint8

const (
	FeatureNone FeatureKind = iota
	FeatureRuin
	FeatureShrine
	FeatureNest
	FeatureBones
)

func (f FeatureKind) String() string {
	switch f {
	case FeatureRuin:
		return "ruin"
	case FeatureShrine:
		return "shrine"
	case FeatureNest:
		return "nest"
	case FeatureBones:
		return "bones"
	default:
		return ""
	}
}

// DreadEffects — снимок эффектов ужаса, наложенных на тайл.
// Заполняется брокером модификаций; тайл лишь хранит последний снимок.
type DreadEffects struct {
	Level      int     `json:"level"`
	FogDensity float64 `json:"fogDensity"`
	Desaturate float64 `json:"desaturate"`
}

// LayerCakeTile — один тайл мира.
//
// Инварианты:
//   - слой биома присутствует всегда;
//   - тропа лежит только на path-compatible биоме;
//   - объект стоит только на проходимом тайле, и только один;
//   - Corruption монотонно не убывает вне явных событий очищения.
type LayerCakeTile struct {
	Coord hexmath.Hex `json:"coord"`

	Biome   Biome       `json:"biome"`
	Path    PathKind    `json:"path,omitempty"`
	Feature FeatureKind `json:"feature,omitempty"`

	// Corruption ∈ [0,1]. Меняется только через Store.ApplyCorruption
	// и Store.Cleanse — прямое присваивание обходит инвариант.
	Corruption float64 `json:"corruption"`

	Discovered bool         `json:"discovered"`
	Effects    DreadEffects `json:"effects"`

	// Dirty — какие слои должны перерисоваться. Потребитель читает и сбрасывает.
	Dirty DirtyMask `json:"-"`
}

// Passable учитывает и биом, и тропу: мост делает проходимой воду.
func (t *LayerCakeTile) Passable() bool {
	if t.Path == PathBridge {
		return true
	}
	return t.Biome.Passable()
}
