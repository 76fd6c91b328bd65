package player

import "sync"

// Recorder captures sent keys instead of delivering them, for the
// simulator and tests. A configured error is returned from every send
// while still recording the key.
type Recorder struct {
	mu   sync.Mutex
	keys []string

	// Err, when set, is returned by SendKey.
	Err error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendKey(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return r.Err
}

// Keys returns the keys sent so far, in order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Reset discards recorded keys.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = nil
}

var _ Player = (*Recorder)(nil)
