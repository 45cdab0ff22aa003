// Package view tracks which single screen the authenticated shell renders.
package view

import (
	"fmt"
	"sync"
)

// View names one screen of the application. Exactly one is active at a
// time; switching views never tears down session state.
type View string

const (
	Login         View = "login"
	Register      View = "register"
	UserMenu      View = "user-menu"
	SubmitData    View = "submit-data"
	LatestValues  View = "latest-values"
	AdminData     View = "get-admin-data"
	AdminLists    View = "get-admin-lists"
	AddApartment  View = "add-apartment"
	EditApartment View = "edit-apartment"
	DeleteApt     View = "delete-apartment"
	AddDefault    View = "add-default"
	NewMeter      View = "new-meter"
	AdminSubmit   View = "admin-submit-data"
	CreateInvoice View = "create-pdf"
	DisplayPDF    View = "display-pdf"
	SendEmail     View = "send-email"
	EditUser      View = "edit-user"
	NotFound      View = "not-found"
)

var adminOnly = map[View]bool{
	AdminData:     true,
	AdminLists:    true,
	AddApartment:  true,
	EditApartment: true,
	DeleteApt:     true,
	AddDefault:    true,
	NewMeter:      true,
	AdminSubmit:   true,
	CreateInvoice: true,
	DisplayPDF:    true,
	SendEmail:     true,
	EditUser:      true,
}

// AdminOnly reports whether v is reachable only by property-manager users.
func AdminOnly(v View) bool { return adminOnly[v] }

// Selector is the single-value view state machine. Transitions have one
// guard: admin-only views require the capability probe to report true.
// Forms themselves do not re-check the flag; the real authorization lives
// server-side on every endpoint.
type Selector struct {
	mu        sync.Mutex
	current   View
	isAdmin   func() bool
	listeners map[int]func(View)
	nextID    int
}

// NewSelector starts at the tenant default. isAdmin is consulted on every
// transition into an admin-only view.
func NewSelector(isAdmin func() bool) *Selector {
	return &Selector{
		current:   SubmitData,
		isAdmin:   isAdmin,
		listeners: make(map[int]func(View)),
	}
}

// Activate replaces the current view and notifies subscribers. Admin-only
// views are refused for non-admin sessions.
func (s *Selector) Activate(v View) error {
	if AdminOnly(v) && (s.isAdmin == nil || !s.isAdmin()) {
		return fmt.Errorf("view %s requires an admin session", v)
	}

	s.mu.Lock()
	s.current = v
	ls := make([]func(View), 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(v)
	}
	return nil
}

// Current returns the active view.
func (s *Selector) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers a listener for view changes and returns its teardown.
func (s *Selector) Subscribe(fn func(View)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
