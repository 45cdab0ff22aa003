package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"overhead/internal/model"
)

// Login exchanges credentials for a session payload. No bearer token is
// attached; the call itself establishes one.
func (c *Client) Login(ctx context.Context, username, password string) (model.LoginResponse, error) {
	var resp model.LoginResponse
	body := map[string]string{"username": username, "password": password}
	err := c.postJSON(ctx, "/login", body, &resp)
	return resp, err
}

// Register creates a tenant account from a registration link. The reply is
// plain text; 409 means the username is taken.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	var resp string
	err := c.postJSON(ctx, "/register", req, &resp)
	return resp, err
}

func (c *Client) GetAllApartments(ctx context.Context) ([]model.Apartment, error) {
	var list []model.Apartment
	err := c.getJSON(ctx, "/admin/getAllApartments", &list)
	return list, err
}

func (c *Client) AddApartment(ctx context.Context, apt model.Apartment) error {
	return c.postJSON(ctx, "/admin/addApartment", apt, nil)
}

// MeterSwap carries the optional query parameters of editApartment used by
// the meter replacement flow: the kind being replaced and the closing
// reading of the outgoing device.
type MeterSwap struct {
	Kind      model.MeterKind
	LastValue string
}

func (c *Client) EditApartment(ctx context.Context, apt model.Apartment, swap *MeterSwap) error {
	raw, err := json.Marshal(apt)
	if err != nil {
		return err
	}
	var query url.Values
	if swap != nil {
		query = url.Values{}
		query.Set("meterType", string(swap.Kind))
		query.Set("lastMeterValue", swap.LastValue)
	}
	return c.do(ctx, http.MethodPost, "/admin/editApartment", query, bytes.NewReader(raw), "application/json", nil)
}

// DeleteApartment posts the bare ID as a JSON string, matching the
// backend's expectation.
func (c *Client) DeleteApartment(ctx context.Context, id int) error {
	return c.postJSON(ctx, "/admin/deleteApartment", strconv.Itoa(id), nil)
}

// GetAllLastMeterValues returns the latest reading per meter kind, plus
// "<kind>_image" entries when withImage is set. Values arrive as strings
// or numbers depending on the backend path, so both are normalized.
func (c *Client) GetAllLastMeterValues(ctx context.Context, apartmentID string, withImage bool) (map[string]string, error) {
	flag := "0"
	if withImage {
		flag = "1"
	}
	body := map[string]string{"apartmentId": apartmentID, "withImage": flag}

	var raw map[string]any
	if err := c.postJSON(ctx, "/admin/getAllLastMeterValues", body, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out, nil
}

// GetLastMeterValues returns the admin history list for one meter kind.
func (c *Client) GetLastMeterValues(ctx context.Context, apartmentID string, kind model.MeterKind) (map[string]model.MeterReading, error) {
	body := map[string]string{"apartmentId": apartmentID, "meterType": string(kind)}
	var out map[string]model.MeterReading
	err := c.postJSON(ctx, "/admin/getLastMeterValues", body, &out)
	return out, err
}

func (c *Client) GetLast2Values(ctx context.Context, apartmentID string) (model.Last2Values, error) {
	body := map[string]string{"apartmentId": apartmentID}
	var out model.Last2Values
	err := c.postJSON(ctx, "/admin/getLast2values", body, &out)
	return out, err
}

// GetUserByApartmentID resolves the tenant email for an apartment. 404
// carries a structured message for apartments without a user.
func (c *Client) GetUserByApartmentID(ctx context.Context, apartmentID string) (string, error) {
	body := map[string]string{"apartmentId": apartmentID}
	var out struct {
		Email string `json:"email"`
	}
	if err := c.postJSON(ctx, "/admin/getUserByApartmentId", body, &out); err != nil {
		return "", err
	}
	return out.Email, nil
}

func (c *Client) CreateInvoice(ctx context.Context, req model.InvoiceRequest) (model.InvoiceResponse, error) {
	var out model.InvoiceResponse
	err := c.postJSON(ctx, "/admin/createInvoice", req, &out)
	return out, err
}

func (c *Client) SendPdfEmail(ctx context.Context, draft model.InvoiceDraft) error {
	body := map[string]string{
		"apartmentAddress": draft.ApartmentAddress,
		"email":            draft.Email,
		"language":         draft.Language,
		"pdfBase64":        draft.PDF64,
	}
	return c.postJSON(ctx, "/admin/sendPdfEmail", body, nil)
}

func (c *Client) SendEmail(ctx context.Context, apartmentID, email string) error {
	body := map[string]string{"apartment": apartmentID, "email": email}
	return c.postJSON(ctx, "/admin/sendEmail", body, nil)
}

func (c *Client) GetAllUsers(ctx context.Context) ([]model.User, error) {
	var list []model.User
	err := c.getJSON(ctx, "/admin/getAllUsers", &list)
	return list, err
}

func (c *Client) EditUser(ctx context.Context, u model.User) error {
	return c.postJSON(ctx, "/admin/editUser", u, nil)
}

// DeleteUser posts the bare ID; 403 with "Admin users cannot be deleted"
// guards the admin accounts.
func (c *Client) DeleteUser(ctx context.Context, id int) (string, error) {
	var resp string
	err := c.postJSON(ctx, "/admin/deleteUser", strconv.Itoa(id), &resp)
	return resp, err
}

// Upload is an optional meter photo attached to a submission.
type Upload struct {
	Name string
	Data []byte
}

// SubmitMeterValue posts a reading as multipart form data: the meter kind,
// a JSON values blob, and the optional photo. The reply is a plain-text
// acknowledgement.
func (c *Client) SubmitMeterValue(ctx context.Context, kind model.MeterKind, apartmentID, value string, image *Upload) (string, error) {
	values, err := json.Marshal(map[string]string{
		"apartmentId": apartmentID,
		"meterValue":  value,
	})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("meterType", string(kind)); err != nil {
		return "", err
	}
	if err := w.WriteField("values", string(values)); err != nil {
		return "", err
	}
	if image != nil {
		part, err := w.CreateFormFile("file", image.Name)
		if err != nil {
			return "", err
		}
		if _, err := part.Write(image.Data); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	var resp string
	err = c.do(ctx, http.MethodPost, "/user/submitMeterValue", nil, &buf, w.FormDataContentType(), &resp)
	return resp, err
}

// GetUserLastMeterValues returns the tenant's reading history for one
// meter kind as a date→value map.
func (c *Client) GetUserLastMeterValues(ctx context.Context, apartmentID string, kind model.MeterKind) (map[string]string, error) {
	body := map[string]string{"apartmentId": apartmentID, "meterType": string(kind)}
	var out map[string]string
	err := c.postJSON(ctx, "/user/getLastMeterValues", body, &out)
	return out, err
}
