package supabase

import "sync"

// SessionStore persists the signed-in session between page loads.
type SessionStore interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

type MemoryStore struct {
	mu   sync.Mutex
	sess *Session
}

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, nil
	}
	s := *m.sess
	return &s, nil
}

func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sess = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.sess = nil
	m.mu.Unlock()
	return nil
}

// KV is a JSON key/value store such as the browser's local storage.
type KV interface {
	Get(key string, v any) error
	Set(key string, v any) error
	Del(key string)
}

// KVStore keeps the session under Key in a KV.
type KVStore struct {
	KV  KV
	Key string
}

func (s KVStore) Load() (*Session, error) {
	var sess Session
	if err := s.KV.Get(s.Key, &sess); err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		return nil, nil
	}
	return &sess, nil
}

func (s KVStore) Save(sess *Session) error { return s.KV.Set(s.Key, sess) }

func (s KVStore) Clear() error {
	s.KV.Del(s.Key)
	return nil
}
