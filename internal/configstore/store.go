package configstore

import (
	"sync"
	"time"

	"github.com/JBBSoftech/watter/internal/models"
)

// Store holds the last-known-good configuration document. Replacement is an
// atomic swap: readers never observe a partially-updated document.
type Store struct {
	mu        sync.RWMutex
	doc       *models.ConfigDocument
	lastErr   error
	updatedAt time.Time
}

func New() *Store {
	return &Store{}
}

// Get returns the current document, or false before the first successful
// load.
func (s *Store) Get() (models.ConfigDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return models.ConfigDocument{}, false
	}
	return *s.doc, true
}

// Replace swaps in a new document and clears the error flag. Under racing
// replaces the last one to commit wins.
func (s *Store) Replace(doc models.ConfigDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = &doc
	s.lastErr = nil
	s.updatedAt = time.Now()
}

// SetError records a fetch failure without discarding the current document.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// LastError returns the most recent fetch error, if any. A successful
// Replace clears it.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// UpdatedAt returns when the document was last replaced; zero before the
// first load.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
