// Package presence tracks connected sessions and fans attendance and location
// events out to them.
package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/jgirmay/geoattend/pkg/models"
)

// Connection is the transport handle a session writes through.
type Connection interface {
	// ID returns the connection identifier.
	ID() string
	// Send enqueues msg without blocking and reports whether it was accepted.
	Send(msg *Message) bool
	// Close terminates the connection. It is safe to call more than once.
	Close()
}

// Session is one live connection of one employee.
type Session struct {
	ConnectionID string
	Employee     models.EmployeeSummary
	Observer     bool
	ConnectedAt  time.Time
	Conn         Connection
}

// Registry maps connections to sessions. An employee has at most one session;
// registering a second one replaces the first.
type Registry struct {
	mu         sync.RWMutex
	byConn     map[string]*Session
	byEmployee map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byConn:     make(map[string]*Session),
		byEmployee: make(map[string]string),
	}
}

// Register adds s and returns the session it replaced, if any. The caller owns
// closing the replaced session's connection.
func (r *Registry) Register(s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var replaced *Session
	if prevID, ok := r.byEmployee[s.Employee.ID]; ok && prevID != s.ConnectionID {
		replaced = r.byConn[prevID]
		delete(r.byConn, prevID)
	}

	r.byConn[s.ConnectionID] = s
	r.byEmployee[s.Employee.ID] = s.ConnectionID

	return replaced
}

// Unregister removes the session for connectionID. A connection that was
// already replaced is not found, so a late disconnect cannot evict its successor.
func (r *Registry) Unregister(connectionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byConn[connectionID]
	if !ok {
		return nil, false
	}

	delete(r.byConn, connectionID)
	if r.byEmployee[s.Employee.ID] == connectionID {
		delete(r.byEmployee, s.Employee.ID)
	}

	return s, true
}

// Lookup returns the session for connectionID
func (r *Registry) Lookup(connectionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byConn[connectionID]
	return s, ok
}

// ListOnline returns every connected employee ordered by connection time.
func (r *Registry) ListOnline() []OnlineEmployee {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]OnlineEmployee, 0, len(r.byConn))
	for _, s := range r.byConn {
		online = append(online, OnlineEmployee{
			EmployeeSummary: s.Employee,
			Observer:        s.Observer,
			ConnectedAt:     s.ConnectedAt,
		})
	}

	sort.Slice(online, func(i, j int) bool {
		if online[i].ConnectedAt.Equal(online[j].ConnectedAt) {
			return online[i].ID < online[j].ID
		}
		return online[i].ConnectedAt.Before(online[j].ConnectedAt)
	})
	return online
}

// ConnectionsFor returns the live connections of employeeID.
func (r *Registry) ConnectionsFor(employeeID string) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connID, ok := r.byEmployee[employeeID]
	if !ok {
		return nil
	}
	if s, ok := r.byConn[connID]; ok && s.Conn != nil {
		return []Connection{s.Conn}
	}
	return nil
}

// Observers returns the sessions holding the observer capability
func (r *Registry) Observers() []*Session {
	return r.filter(func(s *Session) bool { return s.Observer })
}

// All returns every registered session
func (r *Registry) All() []*Session {
	return r.filter(func(*Session) bool { return true })
}

// Count returns the number of registered sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

func (r *Registry) filter(keep func(*Session) bool) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.byConn))
	for _, s := range r.byConn {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
