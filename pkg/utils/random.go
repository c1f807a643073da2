package utils

import (
	"crypto/rand"
	"encoding/hex"
	"hash/fnv"
)

// GenerateID создает простой уникальный ID (замена UUID для снижения зависимостей)
func GenerateID() string {
	b := make([]byte, 8) // 16 символов hex
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate random ID: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// StringToSeed детерминированно превращает строку в сид.
// Один и тот же идентификатор всегда дает один и тот же генератор,
// поэтому реплей и live-режим порождают одинаковый контент.
func StringToSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}

// ChunkSeed выводит сид чанка из мастер-сида и координат чанка.
// Chunk (Q,R) Seed = hash(MasterSeed, Q, R) — тайлы регенерируются
// из сида при повторной загрузке, содержимое не сохраняется.
func ChunkSeed(master int64, q, r int) int64 {
	h := fnv.New64a()
	var buf [24]byte
	put := func(off int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}
	put(0, uint64(master))
	put(8, uint64(int64(q)))
	put(16, uint64(int64(r)))
	_, _ = h.Write(buf[:])
	return int64(h.Sum64())
}
