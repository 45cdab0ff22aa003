package session

import "sync"

// Storage key names. Renaming one silently drops the persisted session on
// the next upgrade, so treat these as frozen.
const (
	KeyToken           = "token"
	KeyIsAdmin         = "isAdmin"
	KeyApartments      = "apartments"
	KeyUsers           = "users"
	KeyInvoicePDF      = "invoicePdf64"
	KeyInvoiceEmail    = "invoiceEmail"
	KeyInvoiceAddress  = "invoiceApartmentAddress"
	KeyInvoiceLanguage = "invoiceLanguage"
)

// Storage is durable string-keyed storage scoped to this installation.
// The app backs it with Fyne preferences; tests use MemoryStorage.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// MemoryStorage is a map-backed Storage for tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *MemoryStorage) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}
