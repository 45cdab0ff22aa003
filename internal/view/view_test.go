package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialViewIsSubmitData(t *testing.T) {
	s := NewSelector(func() bool { return false })
	assert.Equal(t, SubmitData, s.Current())
}

func TestActivateNotifiesSubscribers(t *testing.T) {
	s := NewSelector(func() bool { return false })

	var got []View
	unsubscribe := s.Subscribe(func(v View) { got = append(got, v) })

	require.NoError(t, s.Activate(LatestValues))
	require.NoError(t, s.Activate(UserMenu))
	unsubscribe()
	require.NoError(t, s.Activate(SubmitData))

	assert.Equal(t, []View{LatestValues, UserMenu}, got)
	assert.Equal(t, SubmitData, s.Current())
}

func TestAdminViewsRequireCapability(t *testing.T) {
	admin := false
	s := NewSelector(func() bool { return admin })

	err := s.Activate(EditUser)
	require.Error(t, err)
	assert.Equal(t, SubmitData, s.Current(), "denied transition leaves state alone")

	admin = true
	require.NoError(t, s.Activate(EditUser))
	assert.Equal(t, EditUser, s.Current())
}

func TestTenantViewsNeedNoCapability(t *testing.T) {
	s := NewSelector(nil)
	require.NoError(t, s.Activate(LatestValues))
	assert.Equal(t, LatestValues, s.Current())
}

func TestAdminOnlySet(t *testing.T) {
	for _, v := range []View{AdminData, AdminLists, AddApartment, EditApartment, DeleteApt, AddDefault, NewMeter, AdminSubmit, CreateInvoice, DisplayPDF, SendEmail, EditUser} {
		assert.True(t, AdminOnly(v), "%s should be admin-only", v)
	}
	for _, v := range []View{Login, Register, UserMenu, SubmitData, LatestValues, NotFound} {
		assert.False(t, AdminOnly(v), "%s should not be admin-only", v)
	}
}
