package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overhead/internal/api"
	"overhead/internal/model"
	"overhead/internal/validate"
)

// makeEditUserView manages tenant accounts: pick one, change the email or
// apartment binding, or delete the account outright.
func (u *appUI) makeEditUserView() fyne.CanvasObject {
	var users []model.User
	var selected *model.User

	username := widget.NewEntry()
	email := widget.NewEntry()
	aptID := widget.NewEntry()

	userSelect := widget.NewSelect(nil, nil)
	userSelect.PlaceHolder = "Select a user"

	apply := func(list []model.User) {
		users = list
		names := make([]string, len(list))
		for i, usr := range list {
			names[i] = usr.DisplayName()
		}
		userSelect.Options = names
		userSelect.OnChanged = func(name string) {
			for i := range users {
				if users[i].DisplayName() == name {
					selected = &users[i]
					username.SetText(users[i].Username)
					email.SetText(users[i].Email)
					aptID.SetText(strconv.Itoa(users[i].ApartmentID))
					return
				}
			}
			u.popups.Show("Selected user not found")
		}
		userSelect.Refresh()
	}

	reload := func() {
		go func() {
			list, err := u.client.GetAllUsers(context.Background())
			if err != nil {
				u.errs.Handle(err)
				return
			}
			u.session.SetUsers(list)
			fyne.Do(func() { apply(list) })
		}()
	}

	if cached, ok := u.session.Users(); ok {
		apply(cached)
	} else {
		reload()
	}

	saveBtn := widget.NewButton("Save changes", func() {
		if selected == nil {
			u.popups.Show("No user selected")
			return
		}
		updated := *selected
		updated.Username = username.Text
		updated.Email = email.Text
		updated.ApartmentID = atoiField(aptID.Text)

		if updated == *selected {
			u.popups.Show("No data was modified, nothing to save")
			return
		}
		if updated.Username == "" {
			u.popups.Show("Username is required")
			return
		}
		if !validate.Email(updated.Email) {
			u.popups.Show("Please enter a valid email address")
			return
		}
		go func() {
			if err := u.client.EditUser(context.Background(), updated); err != nil {
				u.errs.Handle(err)
				return
			}
			u.session.InvalidateUsers()
			u.popups.Show("User updated successfully")
			reload()
		}()
	})
	saveBtn.Importance = widget.HighImportance

	deleteBtn := widget.NewButton("Delete user", func() {
		if selected == nil {
			u.popups.Show("No user selected")
			return
		}
		usr := *selected
		dialog.ShowConfirm("Delete user",
			"Delete "+usr.DisplayName()+"? This cannot be undone.",
			func(confirmed bool) {
				if !confirmed {
					return
				}
				go func() {
					_, err := u.client.DeleteUser(context.Background(), usr.ID)
					if err != nil {
						var apiErr *api.Error
						if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
							u.popups.Show("Admin users cannot be deleted")
							return
						}
						u.errs.Handle(err)
						return
					}
					u.session.InvalidateUsers()
					u.popups.Show("User deleted successfully")
					reload()
				}()
			}, u.win)
	})
	deleteBtn.Importance = widget.DangerImportance

	form := widget.NewForm(
		widget.NewFormItem("Username", username),
		widget.NewFormItem("Email", email),
		widget.NewFormItem("Apartment ID", aptID),
	)

	return container.NewVBox(
		widget.NewLabelWithStyle("Users", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		userSelect,
		form,
		container.NewHBox(saveBtn, deleteBtn),
	)
}
