// Package validate holds the client-side field checks. Anything rejected
// here never reaches the network layer.
package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"overhead/internal/model"
)

// Errors maps field name to its first validation message.
type Errors map[string]string

func (e Errors) Ok() bool { return len(e) == 0 }

// First returns one message for popup display.
func (e Errors) First() string {
	for _, msg := range e {
		return msg
	}
	return ""
}

var (
	zipPattern   = regexp.MustCompile(`^\d{4}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Address checks the fields shared by the add and edit apartment forms.
func Address(apt model.Apartment) Errors {
	errs := Errors{}
	switch {
	case apt.City == "":
		errs["city"] = "City is required"
	case len(apt.City) > 15:
		errs["city"] = "City cannot exceed 15 characters"
	}
	switch {
	case apt.Zip == "":
		errs["zip"] = "ZIP is required"
	case !zipPattern.MatchString(apt.Zip):
		errs["zip"] = "ZIP must be exactly 4 numeric characters"
	}
	if apt.Street == "" {
		errs["street"] = "Street is required"
	}
	if apt.GasMeterID == "" {
		errs["gasMeterID"] = "Gas Meter ID is required"
	}
	if apt.ElectricityMeterID == "" {
		errs["electricityMeterID"] = "Electricity Meter ID is required"
	}
	if apt.WaterMeterID == "" {
		errs["waterMeterID"] = "Water Meter ID is required"
	}
	return errs
}

// Apartment checks the full record, billing parameters included. Used by
// the edit form; the add form only collects the address fields.
func Apartment(apt model.Apartment) Errors {
	errs := Address(apt)
	if apt.Deadline < 1 || apt.Deadline > 31 {
		errs["deadline"] = "Deadline must be an integer between 1 and 31"
	}
	if apt.Language != "e" && apt.Language != "h" {
		errs["language"] = `The language value must be "e" or "h"`
	}
	if apt.Rent < 0 || apt.Rent > 2000000 {
		errs["rent"] = "Rent must be a whole number between 0 and 2000000"
	}
	return errs
}

// Email reports whether the address looks deliverable.
func Email(addr string) bool {
	return emailPattern.MatchString(addr)
}

// Registration checks the register form.
func Registration(email, username, password, confirm string) Errors {
	errs := Errors{}
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !Email(email):
		errs["email"] = "Please enter a valid email address"
	}
	if username == "" {
		errs["username"] = "Username is required"
	}
	if password == "" {
		errs["password"] = "Password is required"
	}
	switch {
	case confirm == "":
		errs["confirmPassword"] = "Please confirm your password"
	case password != confirm:
		errs["confirmPassword"] = "Passwords do not match"
	}
	return errs
}

// ReadingOutcome classifies a new meter value against the stored previous
// reading.
type ReadingOutcome int

const (
	ReadingOK    ReadingOutcome = iota // strictly greater, submit it
	ReadingEqual                       // same value, nothing to store
	ReadingBelow                       // rejected, meters only count up
)

// CompareReading applies the new-reading rule. previous is the stored
// string form; an empty or unparseable previous imposes no bound.
func CompareReading(value int, previous string) ReadingOutcome {
	if previous == "" {
		return ReadingOK
	}
	prev, err := strconv.ParseFloat(previous, 64)
	if err != nil {
		return ReadingOK
	}
	switch {
	case float64(value) < prev:
		return ReadingBelow
	case float64(value) == prev:
		return ReadingEqual
	default:
		return ReadingOK
	}
}

// ReadingBelowMessage names the minimum acceptable value in the rejection.
func ReadingBelowMessage(previous string) string {
	return "Error: The new meter value cannot be less than the previous value. Please enter a value greater than " + previous
}

// ParseMeterValue accepts only whole numbers.
func ParseMeterValue(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("Please enter a meter value")
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("Please enter a whole number (integer) value")
	}
	return v, nil
}

const maxImageBytes = 10 * 1024 * 1024

var allowedImageExts = map[string]bool{
	".png": true, ".tiff": true, ".tif": true, ".jpg": true, ".jpeg": true,
}

// Image checks an attached meter photo: size cap and accepted formats.
func Image(name string, size int64) error {
	if size > maxImageBytes {
		return fmt.Errorf("File size exceeds 10MB limit")
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(name))] {
		return fmt.Errorf("Only PNG, TIFF, JPG, and JPEG files are allowed")
	}
	return nil
}
