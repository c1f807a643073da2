package types

import (
	"fmt"
	"strconv"
)

// EntityID — 64-битный идентификатор сущности.
//
// EntityID является value-type и предназначен для дешёвого копирования,
// сериализации и сравнения. Аура ссылается на сущность-источник именно
// через EntityID (слабая ссылка): при деспавне сущности индекс аур
// подметается один раз, висячие указатели невозможны.
//
// Формат битов (от старших к младшим):
//
//	[ Shard (8) | Kind (8) | Generation (16) | Index (32) ]
//
// Где:
//   - Shard — идентификатор мира / сервера
//   - Kind — вид сущности (Player, Companion, Dragon и т.д.)
//   - Generation — версия слота сущности (защита от устаревших ссылок)
//   - Index — индекс сущности в таблицах компонентов
type EntityID uint64

// NilEntityID — нулевой идентификатор сущности.
//
// Используется как аналог nil для случаев, когда сущность отсутствует
// или ссылка ещё не инициализирована.
const NilEntityID EntityID = 0

// Конфигурация битов EntityID.
//
// Общее количество бит — 64.
const (
	// bitsIndex — количество бит, выделенных под индекс сущности.
	bitsIndex = 32

	// bitsGen — количество бит для поколения слота.
	// Используется для защиты от использования устаревших ссылок.
	bitsGen = 16

	// bitsKind — количество бит для вида сущности.
	bitsKind = 8

	// bitsShard — количество бит для идентификатора шарда (мира).
	bitsShard = 8

	// Сдвиги битов
	shiftGen   = bitsIndex
	shiftKind  = bitsIndex + bitsGen
	shiftShard = bitsIndex + bitsGen + bitsKind

	// Маски для извлечения значений
	maskIndex = (1 << bitsIndex) - 1
	maskGen   = (1 << bitsGen) - 1
	maskKind  = (1 << bitsKind) - 1
	maskShard = (1 << bitsShard) - 1
)

// PackEntityID собирает EntityID из составных частей.
//
// Функция не выполняет проверок диапазонов значений и предполагает,
// что входные данные валидны.
func PackEntityID(
	shardID uint8,
	kindID uint8,
	gen uint16,
	index uint32,
) EntityID {
	return EntityID(
		(uint64(shardID) << shiftShard) |
			(uint64(kindID) << shiftKind) |
			(uint64(gen) << shiftGen) |
			uint64(index),
	)
}

// Index возвращает индекс сущности в таблицах компонентов.
func (id EntityID) Index() uint32 {
	return uint32(id & maskIndex)
}

// Generation возвращает поколение слота сущности.
//
// Используется для обнаружения устаревших ссылок на уничтоженные сущности.
func (id EntityID) Generation() uint16 {
	return uint16((id >> shiftGen) & maskGen)
}

// Kind возвращает вид сущности.
func (id EntityID) Kind() uint8 {
	return uint8((id >> shiftKind) & maskKind)
}

// Shard возвращает идентификатор шарда, которому принадлежит сущность.
func (id EntityID) Shard() uint8 {
	return uint8((id >> shiftShard) & maskShard)
}

// IsNil проверяет, является ли идентификатор нулевым.
func (id EntityID) IsNil() bool {
	return id == NilEntityID
}

// String возвращает человекочитаемое строковое представление EntityID.
//
// Предназначено для логирования и отладки.
func (id EntityID) String() string {
	if id.IsNil() {
		return "<nil>"
	}

	return fmt.Sprintf(
		"[shard=%d kind=%d gen=%d idx=%d]",
		id.Shard(),
		id.Kind(),
		id.Generation(),
		id.Index(),
	)
}

// MarshalJSON сериализует EntityID в JSON как строку.
//
// Это необходимо для предотвращения потери точности при работе с
// JavaScript и другими средами, не поддерживающими uint64.
func (id EntityID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(id), 10) + `"`), nil
}

// UnmarshalJSON десериализует EntityID из JSON.
//
// Поддерживаются как строковое, так и числовое представление.
func (id *EntityID) UnmarshalJSON(data []byte) error {
	s := string(data)

	if len(s) > 1 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" {
		*id = NilEntityID
		return nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}

	*id = EntityID(v)
	return nil
}
