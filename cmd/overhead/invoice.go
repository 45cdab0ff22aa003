package main

import (
	"context"
	"encoding/base64"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overhead/internal/model"
	"overhead/internal/validate"
	"overhead/internal/view"
)

// invoiceMeter is one utility line of the invoice form: the consumption
// window from the backend plus the editable cost.
type invoiceMeter struct {
	kind model.MeterKind
	hist model.ConsumptionHistory
	cost *widget.Entry
	info *widget.Label
}

// makeCreateInvoiceView assembles the monthly invoice. Picking an apartment
// pulls the tenant email and the last two readings of every meter; the cost
// per utility is precomputed from the consumption delta and the stored unit
// price, and stays editable.
func (u *appUI) makeCreateInvoiceView() fyne.CanvasObject {
	var selected *model.Apartment
	var meters []*invoiceMeter

	email := widget.NewEntry()
	email.SetPlaceHolder("Tenant email")

	metersBox := container.NewVBox()

	cleaning := widget.NewEntry()
	cleaning.SetText("0")
	commonCost := widget.NewEntry()
	commonCost.SetText("0")
	otherText := widget.NewEntry()
	otherText.SetPlaceHolder("Other item (optional)")
	otherSum := widget.NewEntry()
	otherSum.SetText("0")

	totalLabel := widget.NewLabelWithStyle("Total: –", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	total := func() int {
		if selected == nil {
			return 0
		}
		sum := selected.Rent + selected.MaintenanceFee
		for _, m := range meters {
			sum += atoiOrZero(m.cost.Text)
		}
		sum += atoiOrZero(cleaning.Text) + atoiOrZero(commonCost.Text) + atoiOrZero(otherSum.Text)
		return sum
	}

	sel := u.apartmentSelect(func(apt model.Apartment) {
		selected = &apt
		id := strconv.Itoa(apt.ID)
		go func() {
			addr, err := u.client.GetUserByApartmentID(context.Background(), id)
			if err != nil {
				u.errs.Handle(err)
			} else {
				fyne.Do(func() { email.SetText(addr) })
			}

			last2, err := u.client.GetLast2Values(context.Background(), id)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			var rows []*invoiceMeter
			for _, kind := range meterKinds {
				hist, ok, err := last2.History(kind)
				if err != nil {
					u.logger.Error("consumption block decode failed", "meter", kind, "error", err)
					continue
				}
				if !ok {
					continue
				}
				m := &invoiceMeter{kind: kind, hist: hist, cost: widget.NewEntry(), info: widget.NewLabel("")}
				m.info.SetText(kind.Label() + ": " + hist.PreviousValue + " (" + hist.PreviousDate + ") → " +
					hist.ActualValue + " (" + hist.ActualDate + ")")
				m.cost.SetText(strconv.Itoa(meterCost(hist)))
				rows = append(rows, m)
			}
			fyne.Do(func() {
				meters = rows
				metersBox.Objects = nil
				for _, m := range rows {
					metersBox.Add(container.NewBorder(nil, nil, m.info, nil, m.cost))
				}
				if len(rows) == 0 {
					metersBox.Add(widget.NewLabel("No consumption data for this apartment."))
				}
				metersBox.Refresh()
				totalLabel.SetText("Total: " + strconv.Itoa(total()))
			})
		}()
	})

	recalcBtn := widget.NewButton("Recalculate total", func() {
		totalLabel.SetText("Total: " + strconv.Itoa(total()))
	})

	createBtn := widget.NewButton("Create invoice", func() {
		if selected == nil {
			u.popups.Show("No apartment selected")
			return
		}
		if !validate.Email(email.Text) {
			u.popups.Show("Please enter a valid email address")
			return
		}

		req := model.InvoiceRequest{
			ApartmentAddress: selected.DisplayName(),
			Email:            email.Text,
			Rent:             strconv.Itoa(selected.Rent),
			MaintenanceFee:   strconv.Itoa(selected.MaintenanceFee),
			Cleaning:         cleaning.Text,
			CommonCost:       commonCost.Text,
			OtherText:        otherText.Text,
			OtherSum:         otherSum.Text,
			Language:         selected.Language,
			TotalSum:         strconv.Itoa(total()),
		}
		for _, m := range meters {
			fillInvoiceMeter(&req, m.kind, m.hist, m.cost.Text)
		}

		go func() {
			resp, err := u.client.CreateInvoice(context.Background(), req)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			u.session.SetInvoiceDraft(model.InvoiceDraft{
				PDF64:            resp.InvoicePdf64,
				Email:            resp.Email,
				ApartmentAddress: resp.ApartmentAddress,
				Language:         resp.Language,
			})
			u.popups.Show("Invoice created successfully")
			u.activate(view.DisplayPDF)
		}()
	})
	createBtn.Importance = widget.HighImportance

	return container.NewBorder(
		container.NewVBox(
			widget.NewLabelWithStyle("Create invoice", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			sel,
			email,
		),
		container.NewVBox(totalLabel, recalcBtn, createBtn),
		nil, nil,
		container.NewVScroll(container.NewVBox(
			metersBox,
			widget.NewForm(
				widget.NewFormItem("Cleaning", cleaning),
				widget.NewFormItem("Common cost", commonCost),
				widget.NewFormItem("Other item", otherText),
				widget.NewFormItem("Other sum", otherSum),
			),
		)),
	)
}

// makeDisplayPDFView previews the invoice hand-off: save the PDF to disk or
// email it to the tenant. Leaving the screen clears the draft.
func (u *appUI) makeDisplayPDFView() fyne.CanvasObject {
	draft := u.session.InvoiceDraft()
	if draft.Empty() {
		return container.NewVBox(
			widget.NewLabel("No invoice to display. Create one first."),
			widget.NewButton("Go to invoice creation", func() { u.activate(view.CreateInvoice) }),
		)
	}

	saveBtn := widget.NewButton("Save PDF", func() {
		data, err := base64.StdEncoding.DecodeString(draft.PDF64)
		if err != nil {
			u.popups.Show("The invoice data is corrupt. Please create it again.")
			return
		}
		d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			defer wc.Close()
			if _, err := wc.Write(data); err != nil {
				u.popups.Show("An error occurred while saving the PDF. Please try again.")
			}
		}, u.win)
		d.SetFileName("invoice.pdf")
		d.Show()
	})

	sendBtn := widget.NewButton("Send by email", func() {
		go func() {
			if err := u.client.SendPdfEmail(context.Background(), draft); err != nil {
				u.errs.Handle(err)
				return
			}
			u.popups.Show("Email sent successfully")
		}()
	})
	sendBtn.Importance = widget.HighImportance

	backBtn := widget.NewButton("Back to invoice creation", func() {
		u.session.ClearInvoiceDraft()
		u.activate(view.CreateInvoice)
	})

	return container.NewVBox(
		widget.NewLabelWithStyle("Invoice ready", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Apartment: "+draft.ApartmentAddress),
		widget.NewLabel("Recipient: "+draft.Email),
		widget.NewLabel("Language: "+draft.Language),
		saveBtn,
		sendBtn,
		backBtn,
	)
}

// makeSendEmailView sends a plain reminder mail, prefilled with the address
// on file for the picked apartment.
func (u *appUI) makeSendEmailView() fyne.CanvasObject {
	var selected *model.Apartment

	email := widget.NewEntry()
	email.SetPlaceHolder("Recipient email")

	sel := u.apartmentSelect(func(apt model.Apartment) {
		selected = &apt
		id := strconv.Itoa(apt.ID)
		go func() {
			addr, err := u.client.GetUserByApartmentID(context.Background(), id)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			fyne.Do(func() { email.SetText(addr) })
		}()
	})

	sendBtn := widget.NewButton("Send email", func() {
		if selected == nil {
			u.popups.Show("Please select an apartment")
			return
		}
		if !validate.Email(email.Text) {
			u.popups.Show("Please enter a valid email address")
			return
		}
		id := strconv.Itoa(selected.ID)
		addr := email.Text
		go func() {
			if err := u.client.SendEmail(context.Background(), id, addr); err != nil {
				u.errs.Handle(err)
				return
			}
			u.popups.Show("Email sent successfully")
		}()
	})
	sendBtn.Importance = widget.HighImportance

	return container.NewVBox(
		widget.NewLabelWithStyle("Send email", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sel,
		email,
		sendBtn,
	)
}

// meterCost prices one consumption window: delta plus any consumption
// recorded on a freshly swapped meter, times the unit price.
func meterCost(h model.ConsumptionHistory) int {
	delta := atoiOrZero(h.ActualValue) - atoiOrZero(h.PreviousValue)
	if delta < 0 {
		delta = 0
	}
	return (delta + atoiOrZero(h.NewMeterConsumption)) * atoiOrZero(h.UnitPrice)
}

func fillInvoiceMeter(req *model.InvoiceRequest, kind model.MeterKind, h model.ConsumptionHistory, cost string) {
	switch kind {
	case model.Gas:
		req.PreviousGas, req.PreviousGasDate = h.PreviousValue, h.PreviousDate
		req.ActualGas, req.ActualGasDate = h.ActualValue, h.ActualDate
		req.GasCost, req.GasNewMeterConsumption = cost, h.NewMeterConsumption
	case model.Electricity:
		req.PreviousElectricity, req.PreviousElectricityDate = h.PreviousValue, h.PreviousDate
		req.ActualElectricity, req.ActualElectricityDate = h.ActualValue, h.ActualDate
		req.ElectricityCost, req.ElectricityNewMeterConsumption = cost, h.NewMeterConsumption
	case model.Water:
		req.PreviousWater, req.PreviousWaterDate = h.PreviousValue, h.PreviousDate
		req.ActualWater, req.ActualWaterDate = h.ActualValue, h.ActualDate
		req.WaterCost, req.WaterNewMeterConsumption = cost, h.NewMeterConsumption
	case model.Heating:
		req.PreviousHeating, req.PreviousHeatingDate = h.PreviousValue, h.PreviousDate
		req.ActualHeating, req.ActualHeatingDate = h.ActualValue, h.ActualDate
		req.HeatingCost, req.HeatingNewMeterConsumption = cost, h.NewMeterConsumption
	}
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
