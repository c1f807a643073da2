package domain

import "strings"

// Biome — базовый слой тайла. Слой биома присутствует всегда.
type Biome uint8

const (
	BiomeUnknown Biome = iota
	BiomePlains
	BiomeForest
	BiomeMountain
	BiomeDesert
	BiomeSwamp
	BiomeSnow
	BiomeLava
	BiomeWater
)

var biomeToString = map[Biome]string{
	BiomePlains:   "plains",
	BiomeForest:   "forest",
	BiomeMountain: "mountain",
	BiomeDesert:   "desert",
	BiomeSwamp:    "swamp",
	BiomeSnow:     "snow",
	BiomeLava:     "lava",
	BiomeWater:    "water",
}

var biomeStringToBiome = map[string]Biome{
	"plains":   BiomePlains,
	"forest":   BiomeForest,
	"mountain": BiomeMountain,
	"desert":   BiomeDesert,
	"swamp":    BiomeSwamp,
	"snow":     BiomeSnow,
	"lava":     BiomeLava,
	"water":    BiomeWater,
}

// String возвращает строковое представление (стабильные ключи для сейвов и логов)
func (b Biome) String() string {
	if val, ok := biomeToString[b]; ok {
		return val
	}
	return "unknown"
}

// ParseBiome конвертирует строку в Biome (нечувствительно к регистру)
func ParseBiome(s string) Biome {
	if val, ok := biomeStringToBiome[strings.ToLower(s)]; ok {
		return val
	}
	return BiomeUnknown
}

// Passable возвращает true, если по биому можно ходить без снаряжения.
func (b Biome) Passable() bool {
	switch b {
	case BiomeLava, BiomeWater, BiomeUnknown:
		return false
	default:
		return true
	}
}

// MoveCost — множитель стоимости движения по биому.
// Непроходимые биомы возвращают 0 (движение отклоняется раньше).
func (b Biome) MoveCost() float64 {
	switch b {
	case BiomePlains:
		return 1.0
	case BiomeForest:
		return 1.3
	case BiomeDesert:
		return 1.5
	case BiomeSwamp:
		return 2.0
	case BiomeSnow:
		return 1.8
	case BiomeMountain:
		return 2.5
	default:
		return 0
	}
}

// PathCompatible возвращает true, если поверх биома можно проложить тропу.
// Тропы не прокладываются по воде, лаве и снегу.
func (b Biome) PathCompatible() bool {
	switch b {
	case BiomePlains, BiomeForest, BiomeDesert, BiomeSwamp, BiomeMountain:
		return true
	default:
		return false
	}
}

// AllBiomes перечисляет валидные биомы в стабильном порядке (для генерации).
var AllBiomes = []Biome{
	BiomePlains, BiomeForest, BiomeMountain, BiomeDesert,
	BiomeSwamp, BiomeSnow, BiomeLava, BiomeWater,
}
