package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overhead/internal/model"
	"overhead/internal/view"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	calls int
	list  []model.Apartment
	err   error
}

func (f *fakeSource) GetAllApartments(ctx context.Context) ([]model.Apartment, error) {
	f.calls++
	return f.list, f.err
}

func loginPayload(admin bool) model.LoginResponse {
	return model.LoginResponse{
		Token: "tok-123",
		Apartment: model.ApartmentSnapshot{
			ID: "7", City: "Szeged", Street: "Fo utca 1", Zip: "6720",
			GasMeterID: "G-1", ElectricityMeterID: "E-1", WaterMeterID: "W-1",
		},
		ActualGas:   "1234",
		ActualWater: "88",
		IsAdmin:     admin,
	}
}

func TestLoginBuildsMeterValues(t *testing.T) {
	cases := []struct {
		name string
		resp model.LoginResponse
		want map[string]string
	}{
		{
			name: "all three present",
			resp: model.LoginResponse{Token: "t", ActualGas: "1", ActualElectricity: "2", ActualWater: "3"},
			want: map[string]string{"Gas meter": "1", "Electricity meter": "2", "Water meter": "3"},
		},
		{
			name: "gas and water only",
			resp: model.LoginResponse{Token: "t", ActualGas: "1234", ActualWater: "88"},
			want: map[string]string{"Gas meter": "1234", "Water meter": "88"},
		},
		{
			name: "none present",
			resp: model.LoginResponse{Token: "t"},
			want: map[string]string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(NewMemoryStorage(), testLogger())
			s.Login(tc.resp)
			assert.Equal(t, tc.want, s.MeterValues())
		})
	}
}

func TestLoginNotifiesChannelsInOrder(t *testing.T) {
	s := New(NewMemoryStorage(), testLogger())

	var order []string
	s.SubscribeLoggedIn(func(v bool) {
		require.True(t, v)
		order = append(order, "login")
	})
	s.SubscribeApartment(func(a *model.ApartmentSnapshot) {
		require.NotNil(t, a)
		order = append(order, "apartment")
	})
	s.SubscribeMeterValues(func(map[string]string) {
		order = append(order, "meters")
	})

	s.Login(loginPayload(false))
	assert.Equal(t, []string{"login", "apartment", "meters"}, order)
}

func TestLoginRoutesByAdminFlag(t *testing.T) {
	t.Run("tenant lands on submit-data", func(t *testing.T) {
		s := New(NewMemoryStorage(), testLogger())
		sel := view.NewSelector(s.IsAdmin)
		s.AttachViews(sel)

		s.Login(loginPayload(false))
		assert.Equal(t, view.SubmitData, sel.Current())
	})

	t.Run("admin lands on admin overview", func(t *testing.T) {
		s := New(NewMemoryStorage(), testLogger())
		sel := view.NewSelector(s.IsAdmin)
		s.AttachViews(sel)

		s.Login(loginPayload(true))
		assert.Equal(t, view.AdminData, sel.Current())
	})
}

func TestLogoutClearsEverything(t *testing.T) {
	storage := NewMemoryStorage()
	s := New(storage, testLogger())
	s.Login(loginPayload(true))
	s.SetApartments([]model.Apartment{{ID: 1, City: "Szeged"}})
	s.SetUsers([]model.User{{ID: 1, Username: "anna"}})
	s.SetInvoiceDraft(model.InvoiceDraft{PDF64: "cGRm", Email: "a@b.hu"})

	s.Logout()

	assert.Empty(t, s.Token())
	assert.False(t, s.IsLoggedIn())
	assert.False(t, s.IsAdmin())
	assert.Nil(t, s.ApartmentData())
	assert.Empty(t, s.MeterValues())

	_, ok := s.Apartments()
	assert.False(t, ok)
	_, ok = s.Users()
	assert.False(t, ok)
	assert.True(t, s.InvoiceDraft().Empty())

	_, ok = storage.Get(KeyIsAdmin)
	assert.False(t, ok)
}

func TestLogoutIsIdempotent(t *testing.T) {
	s := New(NewMemoryStorage(), testLogger())

	notifications := 0
	s.SubscribeLoggedIn(func(bool) { notifications++ })

	s.Login(loginPayload(false))
	s.Logout()
	s.Logout()

	// One for login, one for the first logout. The second is a no-op.
	assert.Equal(t, 2, notifications)
}

func TestFetchAllApartmentsRequiresToken(t *testing.T) {
	s := New(NewMemoryStorage(), testLogger())
	src := &fakeSource{list: []model.Apartment{{ID: 1}}}
	s.AttachApartmentSource(src)

	s.FetchAllApartments(context.Background())

	assert.Zero(t, src.calls, "no network call without a token")
	_, ok := s.Apartments()
	assert.False(t, ok, "cache must stay untouched")
}

func TestFetchAllApartmentsReplacesCache(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyToken, "tok")
	s := New(storage, testLogger())
	src := &fakeSource{list: []model.Apartment{{ID: 1, City: "Szeged", Street: "Fo utca 1"}}}
	s.AttachApartmentSource(src)

	s.FetchAllApartments(context.Background())

	require.Equal(t, 1, src.calls)
	got, ok := s.Apartments()
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Szeged", got[0].City)
}

func TestFetchAllApartmentsFailureKeepsState(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(KeyToken, "tok")
	s := New(storage, testLogger())
	s.SetApartments([]model.Apartment{{ID: 9}})
	s.AttachApartmentSource(&fakeSource{err: context.DeadlineExceeded})

	s.FetchAllApartments(context.Background())

	got, ok := s.Apartments()
	require.True(t, ok, "last-known-good cache survives a failed fetch")
	assert.Equal(t, 9, got[0].ID)
}

func TestInvalidateApartments(t *testing.T) {
	s := New(NewMemoryStorage(), testLogger())
	s.SetApartments([]model.Apartment{{ID: 1}})
	s.InvalidateApartments()

	_, ok := s.Apartments()
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	expiredToken := func(t *testing.T, exp time.Time) string {
		claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		require.NoError(t, err)
		return tok
	}

	t.Run("no token", func(t *testing.T) {
		s := New(NewMemoryStorage(), testLogger())
		assert.False(t, s.Restore())
	})

	t.Run("expired jwt is discarded", func(t *testing.T) {
		storage := NewMemoryStorage()
		storage.Set(KeyToken, expiredToken(t, time.Now().Add(-time.Hour)))
		storage.Set(KeyIsAdmin, "true")
		s := New(storage, testLogger())

		assert.False(t, s.Restore())
		assert.Empty(t, s.Token())
		assert.False(t, s.IsAdmin())
	})

	t.Run("live jwt restores the session", func(t *testing.T) {
		storage := NewMemoryStorage()
		storage.Set(KeyToken, expiredToken(t, time.Now().Add(time.Hour)))
		storage.Set(KeyIsAdmin, "true")
		s := New(storage, testLogger())

		assert.True(t, s.Restore())
		assert.True(t, s.IsLoggedIn())
		assert.True(t, s.IsAdmin())
	})

	t.Run("opaque token is trusted", func(t *testing.T) {
		storage := NewMemoryStorage()
		storage.Set(KeyToken, "not-a-jwt")
		s := New(storage, testLogger())

		assert.True(t, s.Restore())
		assert.True(t, s.IsLoggedIn())
		assert.False(t, s.IsAdmin())
	})
}

func TestSubscriptionTeardown(t *testing.T) {
	s := New(NewMemoryStorage(), testLogger())

	calls := 0
	unsubscribe := s.SubscribeLoggedIn(func(bool) { calls++ })
	unsubscribe()

	s.Login(loginPayload(false))
	assert.Zero(t, calls)
}
