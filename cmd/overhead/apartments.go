package main

import (
	"context"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overhead/internal/api"
	"overhead/internal/model"
	"overhead/internal/validate"
)

func (u *appUI) makeAddApartmentView() fyne.CanvasObject {
	city := widget.NewEntry()
	zip := widget.NewEntry()
	street := widget.NewEntry()
	gasID := widget.NewEntry()
	elecID := widget.NewEntry()
	waterID := widget.NewEntry()

	form := widget.NewForm(
		widget.NewFormItem("City", city),
		widget.NewFormItem("ZIP", zip),
		widget.NewFormItem("Street", street),
		widget.NewFormItem("Gas meter ID", gasID),
		widget.NewFormItem("Electricity meter ID", elecID),
		widget.NewFormItem("Water meter ID", waterID),
	)
	form.SubmitText = "Add apartment"
	form.OnSubmit = func() {
		apt := model.Apartment{
			City: city.Text, Zip: zip.Text, Street: street.Text,
			GasMeterID: gasID.Text, ElectricityMeterID: elecID.Text, WaterMeterID: waterID.Text,
		}
		if errs := validate.Address(apt); !errs.Ok() {
			u.popups.Show(errs.First())
			return
		}
		go func() {
			if err := u.client.AddApartment(context.Background(), apt); err != nil {
				u.errs.Handle(err)
				return
			}
			u.session.InvalidateApartments()
			u.session.FetchAllApartments(context.Background())
			u.popups.Show("Apartment added successfully")
		}()
	}

	return container.NewVBox(
		widget.NewLabelWithStyle("Add apartment", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
	)
}

func (u *appUI) makeEditApartmentView() fyne.CanvasObject {
	city := widget.NewEntry()
	zip := widget.NewEntry()
	street := widget.NewEntry()
	gasID := widget.NewEntry()
	elecID := widget.NewEntry()
	waterID := widget.NewEntry()
	deadline := widget.NewEntry()
	language := widget.NewSelect([]string{"e", "h"}, nil)
	rent := widget.NewEntry()
	maintenance := widget.NewEntry()

	var original *model.Apartment

	sel := u.apartmentSelect(func(apt model.Apartment) {
		original = &apt
		city.SetText(apt.City)
		zip.SetText(apt.Zip)
		street.SetText(apt.Street)
		gasID.SetText(apt.GasMeterID)
		elecID.SetText(apt.ElectricityMeterID)
		waterID.SetText(apt.WaterMeterID)
		deadline.SetText(strconv.Itoa(apt.Deadline))
		language.SetSelected(apt.Language)
		rent.SetText(strconv.Itoa(apt.Rent))
		maintenance.SetText(strconv.Itoa(apt.MaintenanceFee))
	})

	form := widget.NewForm(
		widget.NewFormItem("City", city),
		widget.NewFormItem("ZIP", zip),
		widget.NewFormItem("Street", street),
		widget.NewFormItem("Gas meter ID", gasID),
		widget.NewFormItem("Electricity meter ID", elecID),
		widget.NewFormItem("Water meter ID", waterID),
		widget.NewFormItem("Billing deadline (day)", deadline),
		widget.NewFormItem("Invoice language", language),
		widget.NewFormItem("Rent", rent),
		widget.NewFormItem("Maintenance fee", maintenance),
	)
	form.SubmitText = "Save changes"
	form.OnSubmit = func() {
		if original == nil {
			u.popups.Show("No apartment selected")
			return
		}
		updated := *original
		updated.City = city.Text
		updated.Zip = zip.Text
		updated.Street = street.Text
		updated.GasMeterID = gasID.Text
		updated.ElectricityMeterID = elecID.Text
		updated.WaterMeterID = waterID.Text
		updated.Language = language.Selected
		updated.Deadline = atoiField(deadline.Text)
		updated.Rent = atoiField(rent.Text)
		updated.MaintenanceFee = atoiField(maintenance.Text)

		if updated == *original {
			u.popups.Show("No data was modified, nothing to save")
			return
		}
		if errs := validate.Apartment(updated); !errs.Ok() {
			u.popups.Show(errs.First())
			return
		}
		go func() {
			if err := u.client.EditApartment(context.Background(), updated, nil); err != nil {
				u.errs.Handle(err)
				return
			}
			u.session.InvalidateApartments()
			u.session.FetchAllApartments(context.Background())
			u.popups.Show("Apartment updated successfully")
			fyne.Do(u.render)
		}()
	}

	return container.NewVBox(
		widget.NewLabelWithStyle("Edit apartment", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sel,
		form,
	)
}

func (u *appUI) makeDeleteApartmentView() fyne.CanvasObject {
	var selected *model.Apartment

	info := widget.NewLabel("")
	sel := u.apartmentSelect(func(apt model.Apartment) {
		selected = &apt
		info.SetText(apt.DisplayName() + " (" + apt.Zip + ")")
	})

	deleteBtn := widget.NewButton("Delete apartment", func() {
		if selected == nil {
			u.popups.Show("No apartment selected")
			return
		}
		apt := *selected
		dialog.ShowConfirm("Delete apartment",
			"Delete "+apt.DisplayName()+"? This cannot be undone.",
			func(confirmed bool) {
				if !confirmed {
					return
				}
				go func() {
					if err := u.client.DeleteApartment(context.Background(), apt.ID); err != nil {
						u.errs.Handle(err)
						return
					}
					u.session.InvalidateApartments()
					u.session.FetchAllApartments(context.Background())
					u.popups.Show("Apartment deleted successfully")
					fyne.Do(u.render)
				}()
			}, u.win)
	})
	deleteBtn.Importance = widget.DangerImportance

	return container.NewVBox(
		widget.NewLabelWithStyle("Delete apartment", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sel,
		info,
		deleteBtn,
	)
}

// makeNewMeterView swaps a physical meter device: the closing reading of
// the outgoing device travels as query parameters next to the updated
// apartment record.
func (u *appUI) makeNewMeterView() fyne.CanvasObject {
	var selected *model.Apartment

	kindSelect := widget.NewSelect(kindLabels(), nil)
	kindSelect.PlaceHolder = "Select a meter type"

	lastValue := NewMeterEntry()
	lastValue.SetPlaceHolder("Closing value of the old meter")

	newID := widget.NewEntry()
	newID.SetPlaceHolder("New meter device ID")

	sel := u.apartmentSelect(func(apt model.Apartment) {
		selected = &apt
	})

	registerBtn := widget.NewButton("Register new meter", func() {
		if selected == nil {
			u.popups.Show("No apartment selected")
			return
		}
		if kindSelect.Selected == "" {
			u.popups.Show("No meter type selected")
			return
		}
		if _, err := validate.ParseMeterValue(lastValue.Text); err != nil {
			u.popups.Show(err.Error())
			return
		}
		if newID.Text == "" {
			u.popups.Show("Please enter the new meter device ID")
			return
		}

		kind := model.KindFromLabel(kindSelect.Selected)
		updated := *selected
		switch kind {
		case model.Gas:
			updated.GasMeterID = newID.Text
		case model.Electricity:
			updated.ElectricityMeterID = newID.Text
		case model.Water:
			updated.WaterMeterID = newID.Text
		case model.Heating:
			updated.HeatingMeterID = newID.Text
		}

		swap := &api.MeterSwap{Kind: kind, LastValue: lastValue.Text}
		go func() {
			if err := u.client.EditApartment(context.Background(), updated, swap); err != nil {
				u.errs.Handle(err)
				return
			}
			u.session.InvalidateApartments()
			u.popups.Show("New meter device registered successfully!")
		}()
	})
	registerBtn.Importance = widget.HighImportance

	return container.NewVBox(
		widget.NewLabelWithStyle("New meter device", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sel,
		kindSelect,
		lastValue,
		newID,
		registerBtn,
	)
}

// atoiField parses a numeric form field; garbage maps to -1 so the range
// validators produce the user-facing message.
func atoiField(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}
