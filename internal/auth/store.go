package auth

import "sync"

// CredentialStore holds the current [TokenRecord]. Reads and replacements copy the whole record
// under one mutex, so a reader never sees half of a refresh.
type CredentialStore struct {
	mu     sync.Mutex
	record TokenRecord
}

func NewCredentialStore(initial TokenRecord) *CredentialStore {
	return &CredentialStore{record: initial}
}

// Current returns a copy of the latest record.
func (s *CredentialStore) Current() TokenRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// AccessToken returns the latest access token.
func (s *CredentialStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.AccessToken
}

// Replace swaps in r. Later calls to Current observe r.
func (s *CredentialStore) Replace(r TokenRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = r
}
