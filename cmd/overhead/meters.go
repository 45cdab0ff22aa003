package main

import (
	"context"
	"io"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overhead/internal/api"
	"overhead/internal/batch"
	"overhead/internal/model"
	"overhead/internal/validate"
)

// makeAdminSubmitView submits a reading on a tenant's behalf. The previous
// values are fetched per apartment so the same monotonic rule applies as on
// the tenant form.
func (u *appUI) makeAdminSubmitView() fyne.CanvasObject {
	var selected *model.Apartment
	previous := map[string]string{}

	kindSelect := widget.NewSelect(nil, nil)
	kindSelect.PlaceHolder = "Select a meter type"

	valueEntry := NewMeterEntry()
	valueEntry.SetPlaceHolder("New meter value")

	imageLabel := widget.NewLabel("No image attached")
	var image *api.Upload

	sel := u.apartmentSelect(func(apt model.Apartment) {
		selected = &apt
		id := strconv.Itoa(apt.ID)
		go func() {
			values, err := u.client.GetAllLastMeterValues(context.Background(), id, false)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			labels := make([]string, 0, len(values))
			prev := map[string]string{}
			for _, kind := range meterKinds {
				if v, ok := values[string(kind)]; ok {
					labels = append(labels, kind.Label())
					prev[kind.Label()] = v
				}
			}
			fyne.Do(func() {
				previous = prev
				kindSelect.Options = labels
				kindSelect.ClearSelected()
				kindSelect.Refresh()
			})
		}()
	})

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

	submitBtn := widget.NewButton("Submit", func() {
		if selected == nil {
			u.popups.Show("Please select an apartment")
			return
		}
		if kindSelect.Selected == "" {
			u.popups.Show("Please select a meter type")
			return
		}
		value, err := validate.ParseMeterValue(valueEntry.Text)
		if err != nil {
			u.popups.Show(err.Error())
			return
		}

		label := kindSelect.Selected
		switch validate.CompareReading(value, previous[label]) {
		case validate.ReadingBelow:
			u.popups.Show(validate.ReadingBelowMessage(previous[label]))
			return
		case validate.ReadingEqual:
			u.popups.Show("The new meter value is the same as the previous value. No new value will be stored.")
			return
		}

		kind := model.KindFromLabel(label)
		id := strconv.Itoa(selected.ID)
		text := valueEntry.Text
		go func() {
			_, err := u.client.SubmitMeterValue(context.Background(), kind, id, text, image)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			u.popups.Show("Submission successful! \nMeter Type: " + label + "\nMeter Value: " + text)
		}()
	})
	submitBtn.Importance = widget.HighImportance

	return container.NewVBox(
		widget.NewLabelWithStyle("Submit for tenant", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sel,
		kindSelect,
		valueEntry,
		container.NewBorder(nil, nil, attachBtn, nil, imageLabel),
		submitBtn,
	)
}

// makeAddDefaultView seeds opening readings for meters that have no data
// yet. The submissions fan out concurrently and one aggregate popup reports
// the outcome.
func (u *appUI) makeAddDefaultView() fyne.CanvasObject {
	var selected *model.Apartment

	type row struct {
		kind  model.MeterKind
		check *widget.Check
		value *MeterEntry
	}
	var rows []*row
	rowsBox := container.NewVBox()

	sel := u.apartmentSelect(func(apt model.Apartment) {
		selected = &apt
		id := strconv.Itoa(apt.ID)
		go func() {
			values, err := u.client.GetAllLastMeterValues(context.Background(), id, false)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			fyne.Do(func() {
				rows = nil
				rowsBox.Objects = nil
				for _, kind := range meterKinds {
					if _, has := values[string(kind)]; has {
						continue
					}
					if !apartmentHasMeter(apt, kind) {
						continue
					}
					r := &row{kind: kind, check: widget.NewCheck(kind.Label(), nil), value: NewMeterEntry()}
					r.value.SetText("0")
					rows = append(rows, r)
					rowsBox.Add(container.NewBorder(nil, nil, r.check, nil, r.value))
				}
				if len(rows) == 0 {
					rowsBox.Add(widget.NewLabel("Every meter of this apartment already has readings."))
				}
				rowsBox.Refresh()
			})
		}()
	})

	submitBtn := widget.NewButton("Set default readings", func() {
		if selected == nil {
			u.popups.Show("No apartment selected")
			return
		}
		var picked []*row
		for _, r := range rows {
			if r.check.Checked {
				picked = append(picked, r)
			}
		}
		if len(picked) == 0 {
			u.popups.Show("No new meter types selected")
			return
		}
		for _, r := range picked {
			if _, err := validate.ParseMeterValue(r.value.Text); err != nil {
				u.popups.Show(err.Error())
				return
			}
		}

		id := strconv.Itoa(selected.ID)
		tracker := batch.New(len(picked), func(res batch.Result) {
			switch {
			case res.Ok():
				u.popups.Show("Default meters set successfully")
			case res.Completed == 0:
				u.popups.Show("Failed to set default meters")
			default:
				u.popups.Show("Partially successful: " + strconv.Itoa(res.Completed) +
					" meter(s) set, " + strconv.Itoa(res.Failed) + " failed")
			}
		})
		for _, r := range picked {
			kind, text := r.kind, r.value.Text
			go func() {
				_, err := u.client.SubmitMeterValue(context.Background(), kind, id, text, nil)
				if err != nil {
					u.logger.Error("default reading failed", "meter", kind, "error", err)
					tracker.Fail()
					return
				}
				tracker.Succeed()
			}()
		}
	})
	submitBtn.Importance = widget.HighImportance

	return container.NewVBox(
		widget.NewLabelWithStyle("Default readings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sel,
		rowsBox,
		submitBtn,
	)
}

func apartmentHasMeter(apt model.Apartment, kind model.MeterKind) bool {
	switch kind {
	case model.Gas:
		return apt.GasMeterID != ""
	case model.Electricity:
		return apt.ElectricityMeterID != ""
	case model.Water:
		return apt.WaterMeterID != ""
	case model.Heating:
		return apt.HeatingMeterID != ""
	}
	return false
}
