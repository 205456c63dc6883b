package devserver

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/idilsaglam/todoboard/internal/model"
)

var ErrNotFound = errors.New("todo not found")

// Store keeps todos in memory, per user, in creation order.
type Store struct {
	mu     sync.RWMutex
	byUser map[string][]model.Todo
}

func NewStore() *Store {
	return &Store{byUser: make(map[string][]model.Todo)}
}

func (s *Store) List(user string, status model.Status) []model.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Todo{}
	for _, t := range s.byUser[user] {
		if t.Type == status {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Create(user, title, body string) model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Todo{
		ID:    uuid.NewString(),
		Title: title,
		Body:  body,
		Type:  model.NotStarted,
	}
	s.byUser[user] = append(s.byUser[user], t)
	return t
}

func (s *Store) SetStatus(user, id string, status model.Status) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.byUser[user]
	for i := range items {
		if items[i].ID == id {
			items[i].Type = status
			return items[i], nil
		}
	}
	return model.Todo{}, ErrNotFound
}

func (s *Store) Delete(user, id string) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.byUser[user]
	for i, t := range items {
		if t.ID == id {
			s.byUser[user] = append(items[:i], items[i+1:]...)
			return t, nil
		}
	}
	return model.Todo{}, ErrNotFound
}
