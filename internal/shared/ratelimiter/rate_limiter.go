// Package ratelimiter はクライアントキーごとのリクエスト頻度制限を提供します。
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter は、キー単位で操作の頻度を制限するインターフェースです。
type Limiter interface {
	Allow(key string) bool
}

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter はキー（通常はクライアントIP）ごとにトークンバケットを持ちます。
// 一定時間使われなかったバケットはAllowの呼び出し時に破棄されます。
type KeyedLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

var _ Limiter = (*KeyedLimiter)(nil)

// NewKeyedLimiter は1分あたりperMinute回まで許可するリミッターを生成します。
// バーストはperMinuteと同じで、idleTTLを過ぎたキーは破棄されます。
func NewKeyedLimiter(perMinute int, idleTTL time.Duration) *KeyedLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyedLimiter{
		visitors:  make(map[string]*visitor),
		every:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow はkeyのバケットからトークンを1つ消費できればtrueを返します。
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.evictIdle(now)
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.lim.AllowN(now, 1)
}

// evictIdle はidleTTL以上アクセスのないキーを削除します。呼び出し元がmuを保持していること。
func (l *KeyedLimiter) evictIdle(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.idleTTL {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}

// Len は現在保持しているキーの数を返します。
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
