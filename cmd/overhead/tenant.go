package main

import (
	"context"
	"io"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overhead/internal/api"
	"overhead/internal/model"
	"overhead/internal/validate"
	"overhead/internal/view"
)

func (u *appUI) makeUserMenuView() fyne.CanvasObject {
	box := container.NewVBox(
		widget.NewLabelWithStyle("Welcome", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)

	if apt := u.session.ApartmentData(); apt != nil {
		box.Add(widget.NewLabel("Apartment: " + apt.City + ", " + apt.Street + " (" + apt.Zip + ")"))
	}

	values := u.session.MeterValues()
	if len(values) > 0 {
		box.Add(widget.NewSeparator())
		box.Add(widget.NewLabel("Readings at last login:"))
		for _, label := range sortedKeys(values) {
			box.Add(widget.NewLabel("  " + label + ": " + values[label]))
		}
	}

	box.Add(widget.NewSeparator())
	box.Add(widget.NewButton("Submit a new reading", func() { u.activate(view.SubmitData) }))
	box.Add(widget.NewButton("View latest values", func() { u.activate(view.LatestValues) }))

	return box
}

// makeSubmitDataView is the tenant reading form. Only meters the apartment
// actually has appear in the picker; the set comes from the login payload.
func (u *appUI) makeSubmitDataView() fyne.CanvasObject {
	values := u.session.MeterValues()

	kindSelect := widget.NewSelect(sortedKeys(values), nil)
	kindSelect.PlaceHolder = "Select a meter type"

	valueEntry := NewMeterEntry()
	valueEntry.SetPlaceHolder("New meter value")

	imageLabel := widget.NewLabel("No image attached")
	var image *api.Upload

	attachBtn := widget.NewButton("Attach photo", func() {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				u.popups.Show("Could not read the selected file. Please try again.")
				return
			}
			name := rc.URI().Name()
			if err := validate.Image(name, int64(len(data))); err != nil {
				u.popups.Show(err.Error())
				return
			}
			image = &api.Upload{Name: name, Data: data}
			imageLabel.SetText("Attached: " + name)
		}, u.win)
	})

	submit := func() {
		if kindSelect.Selected == "" {
			u.popups.Show("Please select a meter type")
			return
		}
		value, err := validate.ParseMeterValue(valueEntry.Text)
		if err != nil {
			u.popups.Show(err.Error())
			return
		}
		apt := u.session.ApartmentData()
		if apt == nil {
			u.popups.Show("Apartment data not found. Please log in again.")
			return
		}

		label := kindSelect.Selected
		previous := values[label]
		switch validate.CompareReading(value, previous) {
		case validate.ReadingBelow:
			u.popups.Show(validate.ReadingBelowMessage(previous))
			return
		case validate.ReadingEqual:
			u.popups.Show("The new meter value is the same as the previous value. No new value will be stored.")
			u.activate(view.UserMenu)
			return
		}

		kind := model.KindFromLabel(label)
		text := valueEntry.Text
		go func() {
			_, err := u.client.SubmitMeterValue(context.Background(), kind, apt.ID, text, image)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			u.popups.Show("Submission successful! \nMeter Type: " + label + "\nMeter Value: " + text)
		}()
	}

	valueEntry.OnSubmit = func(string) { submit() }
	submitBtn := widget.NewButton("Submit", submit)
	submitBtn.Importance = widget.HighImportance

	return container.NewVBox(
		widget.NewLabelWithStyle("Submit a meter reading", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		kindSelect,
		valueEntry,
		container.NewBorder(nil, nil, attachBtn, nil, imageLabel),
		submitBtn,
	)
}

// makeLatestValuesView lists the tenant's own reading history per meter
// kind, newest first.
func (u *appUI) makeLatestValuesView() fyne.CanvasObject {
	values := u.session.MeterValues()

	results := container.NewVBox()

	kindSelect := widget.NewSelect(sortedKeys(values), nil)
	kindSelect.PlaceHolder = "Select a meter type"
	kindSelect.OnChanged = func(label string) {
		apt := u.session.ApartmentData()
		if apt == nil {
			u.popups.Show("Apartment data not found. Please log in again.")
			return
		}
		kind := model.KindFromLabel(label)
		go func() {
			history, err := u.client.GetUserLastMeterValues(context.Background(), apt.ID, kind)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			dates := sortedKeys(history)
			sort.Sort(sort.Reverse(sort.StringSlice(dates)))

			fyne.Do(func() {
				results.Objects = nil
				if len(dates) == 0 {
					results.Add(widget.NewLabel("No readings recorded yet."))
				}
				for _, d := range dates {
					results.Add(widget.NewLabel(d + ": " + history[d]))
				}
				results.Refresh()
			})
		}()
	}

	return container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Latest meter values", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			kindSelect,
		),
		nil, nil, nil,
		container.NewVScroll(results),
	)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
