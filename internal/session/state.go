// Package session holds per-session display state: the last computed
// resource plan. Notification history lives in the repository.
package session

import (
	"sync"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

type State struct {
	mu   sync.RWMutex
	plan *models.ResourcePlan
}

func NewState() *State {
	return &State{}
}

// SetPlan replaces the last plan wholesale; plans are never partially
// updated.
func (s *State) SetPlan(plan *models.ResourcePlan) {
	s.mu.Lock()
	s.plan = plan
	s.mu.Unlock()
}

// Plan returns the last computed plan, or nil if none exists yet.
func (s *State) Plan() *models.ResourcePlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}
