package main

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"overhead/internal/api"
	"overhead/internal/model"
	"overhead/internal/notify"
	"overhead/internal/session"
	"overhead/internal/view"
)

// appUI owns the window and re-renders it whenever the session flips or the
// active view changes. All state lives in the injected stores; the UI layer
// is rebuilt from scratch on every transition.
type appUI struct {
	win     fyne.Window
	logger  *slog.Logger
	client  *api.Client
	session *session.Store
	views   *view.Selector
	popups  *notify.Notifier
	errs    *api.Translator

	banner       *fyne.Container
	bannerLabel  *widget.Label
	showRegister bool
}

func (u *appUI) start() {
	u.buildBanner()

	u.session.SubscribeLoggedIn(func(bool) {
		fyne.Do(u.render)
	})
	u.views.Subscribe(func(view.View) {
		fyne.Do(u.render)
	})

	u.render()
}

// render swaps the whole window content. Cheap enough at this screen count,
// and it guarantees no form outlives the session that produced it.
func (u *appUI) render() {
	var body fyne.CanvasObject
	switch {
	case !u.session.IsLoggedIn() && u.showRegister:
		body = u.makeRegisterView()
	case !u.session.IsLoggedIn():
		body = u.makeLoginView()
	default:
		body = u.makeShell()
	}
	u.win.SetContent(container.NewBorder(u.banner, nil, nil, nil, body))
}

// buildBanner wires the single popup slot to a dismissable strip above the
// content. Updates arrive from arbitrary goroutines, hence fyne.Do.
func (u *appUI) buildBanner() {
	u.bannerLabel = widget.NewLabel("")
	u.bannerLabel.Wrapping = fyne.TextWrapWord

	dismiss := widget.NewButtonWithIcon("", theme.CancelIcon(), u.popups.Hide)
	u.banner = container.NewBorder(nil, nil, nil, dismiss, u.bannerLabel)
	u.banner.Hide()

	u.popups.Subscribe(func(message string, visible bool) {
		fyne.Do(func() {
			if !visible {
				u.banner.Hide()
				return
			}
			u.bannerLabel.SetText(message)
			u.banner.Show()
		})
	})
}

type navItem struct {
	label  string
	target view.View
}

func (u *appUI) makeShell() fyne.CanvasObject {
	items := []navItem{
		{"User menu", view.UserMenu},
		{"Submit reading", view.SubmitData},
		{"Latest values", view.LatestValues},
	}
	if u.session.IsAdmin() {
		items = append(items,
			navItem{"Admin overview", view.AdminData},
			navItem{"Reading lists", view.AdminLists},
			navItem{"Add apartment", view.AddApartment},
			navItem{"Edit apartment", view.EditApartment},
			navItem{"Delete apartment", view.DeleteApt},
			navItem{"Default readings", view.AddDefault},
			navItem{"New meter device", view.NewMeter},
			navItem{"Submit for tenant", view.AdminSubmit},
			navItem{"Create invoice", view.CreateInvoice},
			navItem{"Send email", view.SendEmail},
			navItem{"Users", view.EditUser},
		)
	}

	menu := container.NewVBox()
	for _, it := range items {
		target := it.target
		btn := widget.NewButton(it.label, func() {
			if err := u.views.Activate(target); err != nil {
				u.logger.Warn("view activation refused", "view", target, "error", err)
			}
		})
		if target == u.views.Current() {
			btn.Importance = widget.HighImportance
		}
		menu.Add(btn)
	}

	logoutBtn := widget.NewButtonWithIcon("Logout", theme.LogoutIcon(), u.session.Logout)

	sidebar := container.NewBorder(
		widget.NewLabelWithStyle("overhead", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		logoutBtn,
		nil, nil,
		container.NewVScroll(menu),
	)

	split := container.NewHSplit(sidebar, container.NewPadded(u.makeView(u.views.Current())))
	split.SetOffset(0.22)
	return split
}

func (u *appUI) makeView(v view.View) fyne.CanvasObject {
	switch v {
	case view.UserMenu:
		return u.makeUserMenuView()
	case view.SubmitData:
		return u.makeSubmitDataView()
	case view.LatestValues:
		return u.makeLatestValuesView()
	case view.AdminData:
		return u.makeAdminDataView()
	case view.AdminLists:
		return u.makeAdminListsView()
	case view.AddApartment:
		return u.makeAddApartmentView()
	case view.EditApartment:
		return u.makeEditApartmentView()
	case view.DeleteApt:
		return u.makeDeleteApartmentView()
	case view.AddDefault:
		return u.makeAddDefaultView()
	case view.NewMeter:
		return u.makeNewMeterView()
	case view.AdminSubmit:
		return u.makeAdminSubmitView()
	case view.CreateInvoice:
		return u.makeCreateInvoiceView()
	case view.DisplayPDF:
		return u.makeDisplayPDFView()
	case view.SendEmail:
		return u.makeSendEmailView()
	case view.EditUser:
		return u.makeEditUserView()
	default:
		return u.makeNotFoundView()
	}
}

func (u *appUI) makeNotFoundView() fyne.CanvasObject {
	return container.NewCenter(widget.NewLabel("This page does not exist."))
}

// activate routes with a log on refusal; forms use it for their own
// navigation buttons.
func (u *appUI) activate(v view.View) {
	if err := u.views.Activate(v); err != nil {
		u.logger.Warn("view activation refused", "view", v, "error", err)
	}
}

// apartmentSelect builds a picker over the cached admin apartment list,
// fetching the cache first when it is absent or invalidated.
func (u *appUI) apartmentSelect(onPick func(model.Apartment)) *widget.Select {
	sel := widget.NewSelect(nil, nil)
	sel.PlaceHolder = "Select an apartment"

	apply := func(list []model.Apartment) {
		names := make([]string, len(list))
		for i, apt := range list {
			names[i] = apt.DisplayName()
		}
		sel.Options = names
		sel.OnChanged = func(name string) {
			for _, apt := range list {
				if apt.DisplayName() == name {
					onPick(apt)
					return
				}
			}
			u.popups.Show("Selected apartment not found")
		}
		sel.Refresh()
	}

	if list, ok := u.session.Apartments(); ok {
		apply(list)
		return sel
	}
	go func() {
		u.session.FetchAllApartments(context.Background())
		list, ok := u.session.Apartments()
		if !ok {
			u.popups.Show("An error occurred while fetching apartments. Please try again.")
			return
		}
		fyne.Do(func() { apply(list) })
	}()
	return sel
}
