// Package memory keeps process-local state that does not outlive a restart.
package memory

import (
	"slices"
	"sync"

	"credapp/internal/domain/creditrequest"
)

var _ creditrequest.Store = (*InboxStore)(nil)

// InboxStore is a mutex-guarded creditrequest.Store. Requests and
// notifications keep insertion order.
type InboxStore struct {
	mu      sync.Mutex
	pending []creditrequest.Request
	notes   []creditrequest.Notification
	unread  int
}

func NewInboxStore() *InboxStore { return &InboxStore{} }

func (s *InboxStore) Add(r creditrequest.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(r.ClientID) >= 0 {
		return false
	}
	s.pending = append(s.pending, r)
	if !slices.ContainsFunc(s.notes, func(n creditrequest.Notification) bool { return n.ID == r.ClientID }) {
		s.notes = append(s.notes, creditrequest.Notification{ID: r.ClientID, Request: r})
		s.unread++
	}
	return true
}

func (s *InboxStore) Get(clientID int64) (creditrequest.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(clientID)
	if i < 0 {
		return creditrequest.Request{}, false
	}
	return s.pending[i], true
}

func (s *InboxStore) Take(clientID int64) (creditrequest.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(clientID)
	if i < 0 {
		return creditrequest.Request{}, false
	}
	r := s.pending[i]
	s.pending = slices.Delete(s.pending, i, i+1)
	return r, true
}

func (s *InboxStore) Pending() []creditrequest.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pending)
}

func (s *InboxStore) Notifications() ([]creditrequest.Notification, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notes), s.unread
}

// DismissNotification removes the notification and decrements the counter,
// which never goes below zero.
func (s *InboxStore) DismissNotification(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unread > 0 {
		s.unread--
	}
	n := len(s.notes)
	s.notes = slices.DeleteFunc(s.notes, func(x creditrequest.Notification) bool { return x.ID == id })
	return len(s.notes) < n
}

func (s *InboxStore) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = nil
	s.unread = 0
}

func (s *InboxStore) indexOf(clientID int64) int {
	return slices.IndexFunc(s.pending, func(r creditrequest.Request) bool { return r.ClientID == clientID })
}
