package helper

import (
	"time"

	"golang.org/x/exp/rand"
)

// NewRand 返回独立的随机源（抽奖加权采样用，避免全局锁竞争）
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
}
