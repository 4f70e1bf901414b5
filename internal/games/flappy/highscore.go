package flappy

import "sync"

// ScoreStore persists the high score.
type ScoreStore interface {
	LoadHighScore() (int, error)
	SaveHighScore(score int) error
}

// HighScore is the process-wide best score. It is read once from its store
// and written back on every increment that exceeds it. Safe for concurrent
// sessions.
type HighScore struct {
	mu    sync.Mutex
	store ScoreStore
	value int
	err   error
}

// LoadHighScore reads the stored high score. A nil store keeps the score in
// memory only.
func LoadHighScore(store ScoreStore) (*HighScore, error) {
	h := &HighScore{store: store}
	if store == nil {
		return h, nil
	}
	v, err := store.LoadHighScore()
	if err != nil {
		return nil, err
	}
	h.value = v
	return h, nil
}

// Value returns the current high score.
func (h *HighScore) Value() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

// Offer records score if it beats the high score and reports whether it did.
func (h *HighScore) Offer(score int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if score <= h.value {
		return false
	}
	h.value = score
	if h.store != nil {
		if err := h.store.SaveHighScore(score); err != nil {
			h.err = err
		}
	}
	return true
}

// Err returns the last persistence error, if any.
func (h *HighScore) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}
