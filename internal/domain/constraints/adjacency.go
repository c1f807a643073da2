// Package constraints хранит правила совместимости слоев мира.
package constraints

import "github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/domain"

// AdjacencyRules описывает, какие биомы могут соседствовать.
// Для биомов, перечисленных в allowed, сосед ОБЯЗАН входить в список.
// Биомы без записи соседствуют с кем угодно.
type AdjacencyRules struct {
	allowed map[domain.Biome]map[domain.Biome]bool
}

// DefaultAdjacencyRules возвращает правила по умолчанию:
//   - лава соседствует только с горами, пустыней и лавой;
//   - снег — только с горами, лесом и снегом;
//   - болото — только с лесом, равниной и болотом.
func DefaultAdjacencyRules() *AdjacencyRules {
	r := &AdjacencyRules{allowed: make(map[domain.Biome]map[domain.Biome]bool)}
	r.Restrict(domain.BiomeLava, domain.BiomeMountain, domain.BiomeDesert, domain.BiomeLava)
	r.Restrict(domain.BiomeSnow, domain.BiomeMountain, domain.BiomeForest, domain.BiomeSnow)
	r.Restrict(domain.BiomeSwamp, domain.BiomeForest, domain.BiomePlains, domain.BiomeSwamp)
	return r
}

// Restrict ограничивает биом b списком разрешенных соседей.
func (r *AdjacencyRules) Restrict(b domain.Biome, neighbors ...domain.Biome) {
	set := make(map[domain.Biome]bool, len(neighbors))
	for _, n := range neighbors {
		set[n] = true
	}
	r.allowed[b] = set
}

// Compatible проверяет, могут ли два биома лежать на соседних тайлах.
// Проверка симметрична: ограничение любого из двух биомов отклоняет пару.
func (r *AdjacencyRules) Compatible(a, b domain.Biome) bool {
	if set, ok := r.allowed[a]; ok && !set[b] {
		return false
	}
	if set, ok := r.allowed[b]; ok && !set[a] {
		return false
	}
	return true
}
