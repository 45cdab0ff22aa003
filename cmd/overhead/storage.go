package main

import (
	"fyne.io/fyne/v2"

	"overhead/internal/session"
)

// prefsStorage backs the session store with Fyne preferences, which persist
// per installation. An empty string counts as absent; no session key has a
// meaningful empty value.
type prefsStorage struct {
	prefs fyne.Preferences
}

var _ session.Storage = (*prefsStorage)(nil)

func newPrefsStorage(prefs fyne.Preferences) *prefsStorage {
	return &prefsStorage{prefs: prefs}
}

func (p *prefsStorage) Get(key string) (string, bool) {
	v := p.prefs.String(key)
	return v, v != ""
}

func (p *prefsStorage) Set(key, value string) {
	p.prefs.SetString(key, value)
}

func (p *prefsStorage) Delete(key string) {
	p.prefs.RemoveValue(key)
}
