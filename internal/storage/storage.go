package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

// DefaultLimit caps the number of stored views
const DefaultLimit = 1000

// ViewStore keeps browsing sessions in memory. Sessions do not outlive
// the process. When the store is full the least recently updated view is
// evicted.
type ViewStore struct {
	views map[string]*models.ViewSession
	mu    sync.RWMutex
	limit int
	now   func() time.Time
}

func New() *ViewStore {
	return &ViewStore{
		views: make(map[string]*models.ViewSession),
		limit: DefaultLimit,
		now:   time.Now,
	}
}

// Create stores a copy of view under a fresh ID
func (s *ViewStore) Create(view models.ViewSession) models.ViewSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	view.ID = uuid.NewString()
	view.CreatedAt = now
	view.UpdatedAt = now

	if s.limit > 0 {
		for len(s.views) >= s.limit {
			s.evictOldest()
		}
	}
	s.views[view.ID] = &view
	return view
}

func (s *ViewStore) Get(id string) (models.ViewSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view, exists := s.views[id]
	if !exists {
		return models.ViewSession{}, false
	}
	return *view, true
}

// Update applies fn to the stored session under the write lock
func (s *ViewStore) Update(id string, fn func(*models.ViewSession)) (models.ViewSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, exists := s.views[id]
	if !exists {
		return models.ViewSession{}, false
	}
	createdAt := view.CreatedAt
	fn(view)
	view.ID = id
	view.CreatedAt = createdAt
	view.UpdatedAt = s.now().UTC()
	return *view, true
}

func (s *ViewStore) GetAll() []models.ViewSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ViewSession, 0, len(s.views))
	for _, v := range s.views {
		result = append(result, *v)
	}
	return result
}

func (s *ViewStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.views, id)
}

// evictOldest must be called with the write lock held
func (s *ViewStore) evictOldest() {
	var oldest *models.ViewSession
	for _, v := range s.views {
		if oldest == nil || v.UpdatedAt.Before(oldest.UpdatedAt) {
			oldest = v
		}
	}
	if oldest != nil {
		delete(s.views, oldest.ID)
	}
}
