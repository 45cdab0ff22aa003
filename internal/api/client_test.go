package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overhead/internal/config"
	"overhead/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(config.API{
		BaseURL: srv.URL,
		Key:     "test-key",
		Timeout: 5 * time.Second,
		Rate:    config.Rate{PerSecond: 100, Burst: 100},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return c, srv
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`[]`))
	}))
	c.TokenFunc = func() string { return "tok-abc" }

	_, err := c.GetAllApartments(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "test-key", got.Get("API-KEY"))
	assert.Equal(t, "Bearer tok-abc", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestLoginCarriesNoBearer(t *testing.T) {
	var auth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.LoginResponse{Token: "fresh"})
	}))

	resp, err := c.Login(context.Background(), "anna", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp.Token)
	assert.Empty(t, auth)
}

func TestUnauthorizedHookFiresOncePerAuthenticatedCall(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	c.TokenFunc = func() string { return "stale" }

	fired := 0
	c.OnUnauthorized = func() { fired++ }

	_, err := c.GetAllApartments(context.Background())
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, 1, fired)
}

func TestUnauthorizedHookSkippedWithoutToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid credentials or API key.", http.StatusUnauthorized)
	}))

	fired := 0
	c.OnUnauthorized = func() { fired++ }

	_, err := c.Login(context.Background(), "anna", "bad")
	require.Error(t, err)
	assert.Zero(t, fired, "a failed login must not trigger the session-expired policy")
}

func TestTransportFailure(t *testing.T) {
	c, srv := newTestClient(t, http.NewServeMux())
	srv.Close()

	_, err := c.GetAllApartments(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.NotNil(t, apiErr.Err)
	assert.Equal(t, MsgFailedToConnect, Translate(err))
}

func TestDeleteApartmentPostsBareID(t *testing.T) {
	var body string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
	}))
	c.TokenFunc = func() string { return "tok" }

	require.NoError(t, c.DeleteApartment(context.Background(), 12))
	assert.JSONEq(t, `"12"`, body)
}

func TestEditApartmentMeterSwapQuery(t *testing.T) {
	var query map[string][]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
	}))
	c.TokenFunc = func() string { return "tok" }

	apt := model.Apartment{ID: 3, City: "Szeged", Street: "Fo utca 1"}
	err := c.EditApartment(context.Background(), apt, &MeterSwap{Kind: model.Gas, LastValue: "4321"})
	require.NoError(t, err)

	assert.Equal(t, []string{"gas"}, query["meterType"])
	assert.Equal(t, []string{"4321"}, query["lastMeterValue"])
}

func TestSubmitMeterValueMultipart(t *testing.T) {
	type seen struct {
		meterType string
		values    map[string]string
		fileName  string
		fileBytes []byte
	}
	var got seen

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		got.meterType = r.FormValue("meterType")
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("values")), &got.values))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		got.fileName = header.Filename
		got.fileBytes, _ = io.ReadAll(file)

		w.Write([]byte("Value stored"))
	}))
	c.TokenFunc = func() string { return "tok" }

	ack, err := c.SubmitMeterValue(context.Background(), model.Gas, "7", "105",
		&Upload{Name: "meter.jpg", Data: []byte{0xFF, 0xD8}})
	require.NoError(t, err)

	assert.Equal(t, "Value stored", ack)
	assert.Equal(t, "gas", got.meterType)
	assert.Equal(t, map[string]string{"apartmentId": "7", "meterValue": "105"}, got.values)
	assert.Equal(t, "meter.jpg", got.fileName)
	assert.Equal(t, []byte{0xFF, 0xD8}, got.fileBytes)
}

func TestSubmitMeterValueWithoutImage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		_, _, err := r.FormFile("file")
		assert.Error(t, err, "no file part expected")
		w.Write([]byte("ok"))
	}))
	c.TokenFunc = func() string { return "tok" }

	_, err := c.SubmitMeterValue(context.Background(), model.Water, "7", "0", nil)
	require.NoError(t, err)
}

func TestGetAllLastMeterValuesNormalizesNumbers(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"gas": 1234, "water": "88", "gas_image": "aW1n"}`))
	}))
	c.TokenFunc = func() string { return "tok" }

	got, err := c.GetAllLastMeterValues(context.Background(), "7", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"gas": "1234", "water": "88", "gas_image": "aW1n"}, got)
}

func TestGetUserByApartmentID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"email":"anna@example.com"}`))
		}))
		c.TokenFunc = func() string { return "tok" }

		email, err := c.GetUserByApartmentID(context.Background(), "7")
		require.NoError(t, err)
		assert.Equal(t, "anna@example.com", email)
	})

	t.Run("not found surfaces the structured message", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"User not found for the selected apartment."}`))
		}))
		c.TokenFunc = func() string { return "tok" }

		_, err := c.GetUserByApartmentID(context.Background(), "9")
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
		assert.Equal(t, "User not found for the selected apartment.", apiErr.JSONMessage())
	})
}
