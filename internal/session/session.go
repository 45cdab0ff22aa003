// Package session holds the client-side authentication and reference-data
// state. Every feature form reads it; only login, logout, and the admin
// cache paths mutate it.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"overhead/internal/model"
	"overhead/internal/view"
)

// ApartmentSource fetches the admin apartment collection. Implemented by
// the API client; tests substitute a counting fake.
type ApartmentSource interface {
	GetAllApartments(ctx context.Context) ([]model.Apartment, error)
}

// Store is the session singleton. Token and admin flag live in durable
// storage; the apartment snapshot and meter values are in-memory only and
// rebuilt by the next login.
type Store struct {
	mu          sync.Mutex
	storage     Storage
	logger      *slog.Logger
	views       *view.Selector
	apartments  ApartmentSource
	loggedIn    bool
	isAdmin     bool
	apartment   *model.ApartmentSnapshot
	meterValues map[string]string

	loginListeners map[int]func(bool)
	aptListeners   map[int]func(*model.ApartmentSnapshot)
	meterListeners map[int]func(map[string]string)
	nextID         int
}

func New(storage Storage, logger *slog.Logger) *Store {
	return &Store{
		storage:        storage,
		logger:         logger,
		meterValues:    map[string]string{},
		loginListeners: make(map[int]func(bool)),
		aptListeners:   make(map[int]func(*model.ApartmentSnapshot)),
		meterListeners: make(map[int]func(map[string]string)),
	}
}

// AttachViews wires the view selector used for post-login routing.
func (s *Store) AttachViews(v *view.Selector) { s.views = v }

// AttachApartmentSource wires the fetcher behind FetchAllApartments.
func (s *Store) AttachApartmentSource(src ApartmentSource) { s.apartments = src }

// Login installs a successful login payload: persists the token and admin
// flag, replaces the apartment snapshot, rebuilds the meter-value map from
// the utilities present in the response, and notifies the login, apartment,
// and meter channels in that order so no subscriber sees a partial state.
// Admin logins kick off the apartment prefetch and land on the admin
// overview; tenants land on submit-data.
func (s *Store) Login(resp model.LoginResponse) {
	s.mu.Lock()
	s.storage.Set(KeyToken, resp.Token)
	if resp.IsAdmin {
		s.storage.Set(KeyIsAdmin, "true")
	} else {
		s.storage.Delete(KeyIsAdmin)
	}

	apt := resp.Apartment
	s.apartment = &apt

	mv := map[string]string{}
	if resp.ActualGas != "" {
		mv[model.Gas.Label()] = resp.ActualGas
	}
	if resp.ActualElectricity != "" {
		mv[model.Electricity.Label()] = resp.ActualElectricity
	}
	if resp.ActualWater != "" {
		mv[model.Water.Label()] = resp.ActualWater
	}
	s.meterValues = mv

	s.loggedIn = true
	s.isAdmin = resp.IsAdmin
	loginLs, aptLs, meterLs := s.listeners()
	s.mu.Unlock()

	for _, l := range loginLs {
		l(true)
	}
	for _, l := range aptLs {
		l(&apt)
	}
	mvCopy := copyValues(mv)
	for _, l := range meterLs {
		l(mvCopy)
	}

	if s.views != nil {
		target := view.SubmitData
		if resp.IsAdmin {
			target = view.AdminData
		}
		if err := s.views.Activate(target); err != nil {
			s.logger.Error("post-login view activation failed", "view", target, "error", err)
		}
	}
	if resp.IsAdmin {
		go s.FetchAllApartments(context.Background())
	}
}

// Logout discards the persisted token, admin flag, caches, and invoice
// hand-off, clears the in-memory snapshot, and notifies subscribers.
// Logging out of a logged-out session is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	_, hasToken := s.storage.Get(KeyToken)
	if !hasToken && !s.loggedIn {
		s.mu.Unlock()
		return
	}

	s.storage.Delete(KeyToken)
	s.storage.Delete(KeyIsAdmin)
	s.storage.Delete(KeyApartments)
	s.storage.Delete(KeyUsers)
	s.clearInvoiceLocked()

	s.apartment = nil
	s.meterValues = map[string]string{}
	s.loggedIn = false
	s.isAdmin = false
	loginLs, aptLs, meterLs := s.listeners()
	s.mu.Unlock()

	for _, l := range loginLs {
		l(false)
	}
	for _, l := range aptLs {
		l(nil)
	}
	for _, l := range meterLs {
		l(map[string]string{})
	}
}

// Restore revives a persisted session at startup. A token that parses as a
// JWT and is already expired is discarded; opaque tokens are trusted and
// left for the first request to reject.
func (s *Store) Restore() bool {
	token, ok := s.storage.Get(KeyToken)
	if !ok || token == "" {
		return false
	}
	if expired(token) {
		s.logger.Info("persisted token expired, discarding session")
		s.storage.Delete(KeyToken)
		s.storage.Delete(KeyIsAdmin)
		return false
	}

	s.mu.Lock()
	s.loggedIn = true
	_, s.isAdmin = s.storage.Get(KeyIsAdmin)
	loginLs, _, _ := s.listeners()
	s.mu.Unlock()

	for _, l := range loginLs {
		l(true)
	}
	return true
}

func expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	// Unverified parse: the client holds no signing key. This is a local
	// hygiene check, not authentication.
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

// FetchAllApartments refreshes the admin apartment cache. Without a token
// it logs and does nothing; callers are expected to have gated on the
// login flag already. A 401 is handled by the API client's interceptor,
// not here.
func (s *Store) FetchAllApartments(ctx context.Context) {
	token := s.Token()
	if token == "" {
		s.logger.Warn("fetchAllApartments skipped: no token")
		return
	}
	if s.apartments == nil {
		s.logger.Warn("fetchAllApartments skipped: no source attached")
		return
	}

	list, err := s.apartments.GetAllApartments(ctx)
	if err != nil {
		s.logger.Error("fetchAllApartments failed", "error", err)
		return
	}
	s.SetApartments(list)
}

// Token returns the persisted bearer credential, or "".
func (s *Store) Token() string {
	t, _ := s.storage.Get(KeyToken)
	return t
}

func (s *Store) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAdmin
}

// ApartmentData returns the tenant's apartment snapshot, nil when logged
// out or before the first login of this process.
func (s *Store) ApartmentData() *model.ApartmentSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.apartment == nil {
		return nil
	}
	apt := *s.apartment
	return &apt
}

// MeterValues returns the label→last-reading map from the login response.
func (s *Store) MeterValues() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyValues(s.meterValues)
}

// Apartments returns the cached admin apartment collection. ok=false means
// the cache is absent or invalidated and must be refetched before use.
func (s *Store) Apartments() ([]model.Apartment, bool) {
	raw, ok := s.storage.Get(KeyApartments)
	if !ok {
		return nil, false
	}
	var list []model.Apartment
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Error("apartments cache corrupt, dropping", "error", err)
		s.storage.Delete(KeyApartments)
		return nil, false
	}
	return list, true
}

// SetApartments replaces the persisted apartment cache.
func (s *Store) SetApartments(list []model.Apartment) {
	raw, err := json.Marshal(list)
	if err != nil {
		s.logger.Error("apartments cache encode failed", "error", err)
		return
	}
	s.storage.Set(KeyApartments, string(raw))
	s.logger.Debug("apartments cache replaced", "count", len(list))
}

// InvalidateApartments drops the cache. Mutating forms call this before
// any refetch; a stale read after a mutation is a correctness bug.
func (s *Store) InvalidateApartments() {
	s.storage.Delete(KeyApartments)
	s.logger.Debug("apartments cache invalidated")
}

// Users returns the cached user collection for the user admin form.
func (s *Store) Users() ([]model.User, bool) {
	raw, ok := s.storage.Get(KeyUsers)
	if !ok {
		return nil, false
	}
	var list []model.User
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Error("users cache corrupt, dropping", "error", err)
		s.storage.Delete(KeyUsers)
		return nil, false
	}
	return list, true
}

func (s *Store) SetUsers(list []model.User) {
	raw, err := json.Marshal(list)
	if err != nil {
		s.logger.Error("users cache encode failed", "error", err)
		return
	}
	s.storage.Set(KeyUsers, string(raw))
}

func (s *Store) InvalidateUsers() {
	s.storage.Delete(KeyUsers)
}

// SetInvoiceDraft stashes the createInvoice result for the preview screen.
func (s *Store) SetInvoiceDraft(d model.InvoiceDraft) {
	s.storage.Set(KeyInvoicePDF, d.PDF64)
	s.storage.Set(KeyInvoiceEmail, d.Email)
	s.storage.Set(KeyInvoiceAddress, d.ApartmentAddress)
	s.storage.Set(KeyInvoiceLanguage, d.Language)
}

func (s *Store) InvoiceDraft() model.InvoiceDraft {
	pdf, _ := s.storage.Get(KeyInvoicePDF)
	email, _ := s.storage.Get(KeyInvoiceEmail)
	addr, _ := s.storage.Get(KeyInvoiceAddress)
	lang, _ := s.storage.Get(KeyInvoiceLanguage)
	return model.InvoiceDraft{PDF64: pdf, Email: email, ApartmentAddress: addr, Language: lang}
}

func (s *Store) ClearInvoiceDraft() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearInvoiceLocked()
}

func (s *Store) clearInvoiceLocked() {
	s.storage.Delete(KeyInvoicePDF)
	s.storage.Delete(KeyInvoiceEmail)
	s.storage.Delete(KeyInvoiceAddress)
	s.storage.Delete(KeyInvoiceLanguage)
}

// SubscribeLoggedIn registers a login-flag listener; returns its teardown.
func (s *Store) SubscribeLoggedIn(fn func(bool)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.loginListeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.loginListeners, id)
		s.mu.Unlock()
	}
}

// SubscribeApartment registers an apartment-snapshot listener.
func (s *Store) SubscribeApartment(fn func(*model.ApartmentSnapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.aptListeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.aptListeners, id)
		s.mu.Unlock()
	}
}

// SubscribeMeterValues registers a meter-value listener.
func (s *Store) SubscribeMeterValues(fn func(map[string]string)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.meterListeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.meterListeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) listeners() ([]func(bool), []func(*model.ApartmentSnapshot), []func(map[string]string)) {
	login := make([]func(bool), 0, len(s.loginListeners))
	for _, l := range s.loginListeners {
		login = append(login, l)
	}
	apt := make([]func(*model.ApartmentSnapshot), 0, len(s.aptListeners))
	for _, l := range s.aptListeners {
		apt = append(apt, l)
	}
	meter := make([]func(map[string]string), 0, len(s.meterListeners))
	for _, l := range s.meterListeners {
		meter = append(meter, l)
	}
	return login, apt, meter
}

func copyValues(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
