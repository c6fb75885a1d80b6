package usecase

import "sync"

// TaskLocker is an in-process advisory lock keyed by task ID. It is held while
// an AI optimization rewrites a task so that manual edits get a conflict
// instead of being silently overwritten.
type TaskLocker struct {
	mu   sync.Mutex
	busy map[uint]struct{}
}

func NewTaskLocker() *TaskLocker {
	return &TaskLocker{busy: make(map[uint]struct{})}
}

// TryLock marks id as busy; it returns false if it already was
func (l *TaskLocker) TryLock(id uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[id]; ok {
		return false
	}
	l.busy[id] = struct{}{}
	return true
}

func (l *TaskLocker) Unlock(id uint) {
	l.mu.Lock()
	delete(l.busy, id)
	l.mu.Unlock()
}

func (l *TaskLocker) IsLocked(id uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.busy[id]
	return ok
}
