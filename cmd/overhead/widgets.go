package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// MeterEntry is an Entry that accepts only digits and submits on Enter.
// Meter readings are whole numbers; rejecting other runes at the widget
// level keeps the forms from round-tripping obvious garbage.
type MeterEntry struct {
	widget.Entry
	OnSubmit func(string)
}

func NewMeterEntry() *MeterEntry {
	e := &MeterEntry{}
	e.ExtendBaseWidget(e)
	return e
}

func (e *MeterEntry) TypedRune(r rune) {
	if r < '0' || r > '9' {
		return
	}
	e.Entry.TypedRune(r)
}

// TypedKey overrides the key handler to trap Enter.
func (e *MeterEntry) TypedKey(key *fyne.KeyEvent) {
	if key.Name == fyne.KeyReturn || key.Name == fyne.KeyEnter {
		if e.OnSubmit != nil && e.Text != "" {
			e.OnSubmit(e.Text)
		}
		return
	}
	e.Entry.TypedKey(key)
}

func (e *MeterEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
