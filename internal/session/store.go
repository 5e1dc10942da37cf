package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store is an in-memory session registry. Sessions are process-local and
// not persisted; they end with the process.
type Store struct {
	sessions map[string]*CaptureSession
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*CaptureSession),
	}
}

// Create registers a fresh session under a generated ID.
func (st *Store) Create() *CaptureSession {
	sess := New(uuid.NewString())

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID] = sess
	return sess
}

func (st *Store) Get(id string) (*CaptureSession, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, exists := st.sessions[id]
	return sess, exists
}

func (st *Store) GetAll() []*CaptureSession {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make([]*CaptureSession, 0, len(st.sessions))
	for _, sess := range st.sessions {
		result = append(result, sess)
	}
	return result
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
