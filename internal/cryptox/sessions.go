package cryptox

import (
	"sync"

	"github.com/dmitrijs2005/writer/internal/common"
)

// Sessions keeps note passwords in memory for the lifetime of the process so
// an encrypted note opened once can be saved again without a prompt. Stored
// values are copies; cleared ones are wiped.
type Sessions struct {
	mu        sync.Mutex
	passwords map[int64][]byte
}

func NewSessions() *Sessions {
	return &Sessions{passwords: make(map[int64][]byte)}
}

func (s *Sessions) Set(id int64, password []byte) {
	cp := make([]byte, len(password))
	copy(cp, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.passwords[id]; ok {
		common.WipeByteArray(old)
	}
	s.passwords[id] = cp
}

// Get returns a copy of the session password for id, or nil.
func (s *Sessions) Get(id int64) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	pw, ok := s.passwords[id]
	if !ok {
		return nil
	}
	cp := make([]byte, len(pw))
	copy(cp, pw)
	return cp
}

func (s *Sessions) Has(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.passwords[id]
	return ok
}

func (s *Sessions) Clear(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.passwords[id]; ok {
		common.WipeByteArray(pw)
		delete(s.passwords, id)
	}
}

// ClearAll forgets every password, e.g. on "lock".
func (s *Sessions) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, pw := range s.passwords {
		common.WipeByteArray(pw)
		delete(s.passwords, id)
	}
}
