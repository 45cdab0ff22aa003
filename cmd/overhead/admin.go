package main

import (
	"context"
	"encoding/base64"
	"sort"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overhead/internal/model"
)

var meterKinds = []model.MeterKind{model.Gas, model.Electricity, model.Water, model.Heating}

// makeAdminDataView is the per-apartment overview: the latest reading of
// every meter the apartment has, with the submitted photos inline.
func (u *appUI) makeAdminDataView() fyne.CanvasObject {
	results := container.NewVBox()

	sel := u.apartmentSelect(func(apt model.Apartment) {
		id := strconv.Itoa(apt.ID)
		go func() {
			values, err := u.client.GetAllLastMeterValues(context.Background(), id, true)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			fyne.Do(func() {
				results.Objects = nil
				for _, kind := range meterKinds {
					v, ok := values[string(kind)]
					if !ok {
						continue
					}
					results.Add(widget.NewLabelWithStyle(kind.Label()+": "+v, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
					if img := decodeImage(string(kind), values[string(kind)+"_image"]); img != nil {
						results.Add(img)
					}
				}
				if len(results.Objects) == 0 {
					results.Add(widget.NewLabel("No meter values recorded for this apartment."))
				}
				results.Refresh()
			})
		}()
	})

	return container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Admin overview", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			sel,
		),
		nil, nil, nil,
		container.NewVScroll(results),
	)
}

// makeAdminListsView shows the full reading history of one meter in one
// apartment, with a save button for each photo.
func (u *appUI) makeAdminListsView() fyne.CanvasObject {
	results := container.NewVBox()

	var selectedApt *model.Apartment
	kindSelect := widget.NewSelect(kindLabels(), nil)
	kindSelect.PlaceHolder = "Select a meter type"

	load := func() {
		if selectedApt == nil {
			u.popups.Show("Please select an apartment")
			return
		}
		if kindSelect.Selected == "" {
			u.popups.Show("Please select a meter type")
			return
		}
		id := strconv.Itoa(selectedApt.ID)
		kind := model.KindFromLabel(kindSelect.Selected)
		go func() {
			history, err := u.client.GetLastMeterValues(context.Background(), id, kind)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			dates := make([]string, 0, len(history))
			for d := range history {
				dates = append(dates, d)
			}
			sort.Sort(sort.Reverse(sort.StringSlice(dates)))

			fyne.Do(func() {
				results.Objects = nil
				if len(dates) == 0 {
					results.Add(widget.NewLabel("No readings recorded yet."))
				}
				for _, d := range dates {
					reading := history[d]
					row := container.NewHBox(widget.NewLabel(d + ": " + reading.Value))
					if reading.Image != "" {
						img := reading.Image
						name := string(kind) + "_" + d + ".jpg"
						row.Add(widget.NewButton("Save image", func() { u.saveImage(name, img) }))
					}
					results.Add(row)
				}
				results.Refresh()
			})
		}()
	}

	aptSelect := u.apartmentSelect(func(apt model.Apartment) {
		selectedApt = &apt
		load()
	})
	kindSelect.OnChanged = func(string) { load() }

	return container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Reading lists", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			aptSelect,
			kindSelect,
		),
		nil, nil, nil,
		container.NewVScroll(results),
	)
}

// saveImage decodes a base64 meter photo and writes it wherever the admin
// picks in the save dialog.
func (u *appUI) saveImage(name, b64 string) {
	if b64 == "" {
		u.popups.Show("No image data available for download.")
		return
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		u.popups.Show("Invalid image data. Cannot download.")
		return
	}
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		if _, err := wc.Write(data); err != nil {
			u.popups.Show("An error occurred while downloading the image. Please try again.")
		}
	}, u.win)
	d.SetFileName(name)
	d.Show()
}

func decodeImage(name, b64 string) fyne.CanvasObject {
	if b64 == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil
	}
	img := canvas.NewImageFromResource(fyne.NewStaticResource(name, data))
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(320, 240))
	return img
}

func kindLabels() []string {
	labels := make([]string, len(meterKinds))
	for i, k := range meterKinds {
		labels[i] = k.Label()
	}
	return labels
}
