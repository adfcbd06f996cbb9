package bot

import (
	"sync"
	"time"
)

// ChatLimiter throttles updates per chat with a fixed window. Chats that go
// quiet are pruned lazily on the next check.
type ChatLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	chats  map[int64]*chatWindow
	now    func() time.Time
}

type chatWindow struct {
	start time.Time
	count int
}

func NewChatLimiter(limit int, window time.Duration) *ChatLimiter {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = 10 * time.Second
	}
	return &ChatLimiter{
		limit:  limit,
		window: window,
		chats:  make(map[int64]*chatWindow),
		now:    time.Now,
	}
}

// Allow reports whether another update from the chat fits the window.
func (l *ChatLimiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	w, ok := l.chats[chatID]
	if !ok || now.Sub(w.start) >= l.window {
		l.chats[chatID] = &chatWindow{start: now, count: 1}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

func (l *ChatLimiter) prune(now time.Time) {
	for id, w := range l.chats {
		if now.Sub(w.start) >= l.window {
			delete(l.chats, id)
		}
	}
}
