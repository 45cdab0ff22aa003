package main

import (
	"context"
	"errors"
	"net/http"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"overhead/internal/api"
	"overhead/internal/model"
	"overhead/internal/validate"
)

func (u *appUI) makeLoginView() fyne.CanvasObject {
	userEntry := widget.NewEntry()
	userEntry.SetPlaceHolder("Username")

	passEntry := widget.NewPasswordEntry()
	passEntry.SetPlaceHolder("Password")

	loginBtn := widget.NewButton("Login", func() {
		username, password := userEntry.Text, passEntry.Text
		if username == "" || password == "" {
			u.popups.Show("Please enter your username and password")
			return
		}
		go func() {
			resp, err := u.client.Login(context.Background(), username, password)
			if err != nil {
				u.errs.Handle(err)
				return
			}
			u.session.Login(resp)
		}()
	})
	loginBtn.Importance = widget.HighImportance

	registerBtn := widget.NewButton("Register with an invitation", func() {
		u.showRegister = true
		u.render()
	})

	form := container.NewVBox(
		widget.NewLabelWithStyle("overhead", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewSeparator(),
		userEntry,
		passEntry,
		loginBtn,
		registerBtn,
	)
	return container.NewCenter(form)
}

// makeRegisterView is the invitation-based signup. The token and apartment
// ID come from the invitation email; without a token the backend has nothing
// to bind the account to.
func (u *appUI) makeRegisterView() fyne.CanvasObject {
	emailEntry := widget.NewEntry()
	emailEntry.SetPlaceHolder("Email")

	userEntry := widget.NewEntry()
	userEntry.SetPlaceHolder("Username")

	passEntry := widget.NewPasswordEntry()
	passEntry.SetPlaceHolder("Password")

	confirmEntry := widget.NewPasswordEntry()
	confirmEntry.SetPlaceHolder("Confirm password")

	tokenEntry := widget.NewEntry()
	tokenEntry.SetPlaceHolder("Invitation token")

	aptEntry := widget.NewEntry()
	aptEntry.SetPlaceHolder("Apartment ID from the invitation")

	registerBtn := widget.NewButton("Register", func() {
		if errs := validate.Registration(emailEntry.Text, userEntry.Text, passEntry.Text, confirmEntry.Text); !errs.Ok() {
			u.popups.Show(errs.First())
			return
		}
		if tokenEntry.Text == "" {
			u.popups.Show("Token is missing. Please use a valid registration link.")
			return
		}
		req := model.RegisterRequest{
			Email:       emailEntry.Text,
			Username:    userEntry.Text,
			Password:    passEntry.Text,
			Token:       tokenEntry.Text,
			ApartmentID: aptEntry.Text,
		}
		go func() {
			_, err := u.client.Register(context.Background(), req)
			if err != nil {
				var apiErr *api.Error
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
					u.popups.Show("The username is already taken, please choose another one.")
					return
				}
				u.errs.Handle(err)
				return
			}
			u.popups.Show("Registration successful! You can now log in.")
			fyne.Do(func() {
				u.showRegister = false
				u.render()
			})
		}()
	})
	registerBtn.Importance = widget.HighImportance

	backBtn := widget.NewButton("Back to login", func() {
		u.showRegister = false
		u.render()
	})

	form := container.NewVBox(
		widget.NewLabelWithStyle("Create your account", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewSeparator(),
		emailEntry,
		userEntry,
		passEntry,
		confirmEntry,
		tokenEntry,
		aptEntry,
		registerBtn,
		backBtn,
	)
	return container.NewCenter(form)
}
