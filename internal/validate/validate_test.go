package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overhead/internal/model"
)

func completeApartment() model.Apartment {
	return model.Apartment{
		City: "Szeged", Zip: "6720", Street: "Fo utca 1",
		GasMeterID: "G-1", ElectricityMeterID: "E-1", WaterMeterID: "W-1",
		Deadline: 10, Language: "h", Rent: 150000,
	}
}

func TestAddressAcceptsCompleteRecord(t *testing.T) {
	assert.True(t, Address(completeApartment()).Ok())
}

func TestAddressFieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.Apartment)
		field  string
		msg    string
	}{
		{"missing city", func(a *model.Apartment) { a.City = "" }, "city", "City is required"},
		{"city too long", func(a *model.Apartment) { a.City = "Hodmezovasarhelyen" }, "city", "City cannot exceed 15 characters"},
		{"missing zip", func(a *model.Apartment) { a.Zip = "" }, "zip", "ZIP is required"},
		{"short zip", func(a *model.Apartment) { a.Zip = "123" }, "zip", "ZIP must be exactly 4 numeric characters"},
		{"alpha zip", func(a *model.Apartment) { a.Zip = "67a0" }, "zip", "ZIP must be exactly 4 numeric characters"},
		{"missing street", func(a *model.Apartment) { a.Street = "" }, "street", "Street is required"},
		{"missing gas meter", func(a *model.Apartment) { a.GasMeterID = "" }, "gasMeterID", "Gas Meter ID is required"},
		{"missing electricity meter", func(a *model.Apartment) { a.ElectricityMeterID = "" }, "electricityMeterID", "Electricity Meter ID is required"},
		{"missing water meter", func(a *model.Apartment) { a.WaterMeterID = "" }, "waterMeterID", "Water Meter ID is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apt := completeApartment()
			tc.mutate(&apt)
			errs := Address(apt)
			assert.Equal(t, tc.msg, errs[tc.field])
		})
	}
}

func TestApartmentBillingRules(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.True(t, Apartment(completeApartment()).Ok())
	})

	t.Run("deadline bounds", func(t *testing.T) {
		for _, d := range []int{0, 32, -3} {
			apt := completeApartment()
			apt.Deadline = d
			assert.Equal(t, "Deadline must be an integer between 1 and 31", Apartment(apt)["deadline"])
		}
		for _, d := range []int{1, 31} {
			apt := completeApartment()
			apt.Deadline = d
			assert.True(t, Apartment(apt).Ok())
		}
	})

	t.Run("language", func(t *testing.T) {
		apt := completeApartment()
		apt.Language = "en"
		assert.Equal(t, `The language value must be "e" or "h"`, Apartment(apt)["language"])

		apt.Language = "e"
		assert.True(t, Apartment(apt).Ok())
	})

	t.Run("rent bounds", func(t *testing.T) {
		for _, r := range []int{-1, 2000001} {
			apt := completeApartment()
			apt.Rent = r
			assert.Equal(t, "Rent must be a whole number between 0 and 2000000", Apartment(apt)["rent"])
		}
		apt := completeApartment()
		apt.Rent = 0
		assert.True(t, Apartment(apt).Ok())
	})
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("anna.kiss@example.com"))
	assert.True(t, Email("a+b@sub.example.hu"))
	assert.False(t, Email("anna"))
	assert.False(t, Email("anna@"))
	assert.False(t, Email("anna@example"))
	assert.False(t, Email("@example.com"))
}

func TestRegistration(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.True(t, Registration("anna@example.com", "anna", "pw", "pw").Ok())
	})

	t.Run("mismatched passwords", func(t *testing.T) {
		errs := Registration("anna@example.com", "anna", "pw1", "pw2")
		assert.Equal(t, "Passwords do not match", errs["confirmPassword"])
	})

	t.Run("everything missing", func(t *testing.T) {
		errs := Registration("", "", "", "")
		assert.Equal(t, "Email is required", errs["email"])
		assert.Equal(t, "Username is required", errs["username"])
		assert.Equal(t, "Password is required", errs["password"])
		assert.Equal(t, "Please confirm your password", errs["confirmPassword"])
	})

	t.Run("bad email", func(t *testing.T) {
		errs := Registration("not-an-email", "anna", "pw", "pw")
		assert.Equal(t, "Please enter a valid email address", errs["email"])
	})
}

func TestCompareReading(t *testing.T) {
	assert.Equal(t, ReadingOK, CompareReading(105, "100"))
	assert.Equal(t, ReadingEqual, CompareReading(100, "100"))
	assert.Equal(t, ReadingBelow, CompareReading(99, "100"))

	// No stored previous value imposes no bound.
	assert.Equal(t, ReadingOK, CompareReading(1, ""))
	assert.Equal(t, ReadingOK, CompareReading(1, "n/a"))
}

func TestReadingBelowMessage(t *testing.T) {
	assert.Equal(t,
		"Error: The new meter value cannot be less than the previous value. Please enter a value greater than 100",
		ReadingBelowMessage("100"))
}

func TestParseMeterValue(t *testing.T) {
	v, err := ParseMeterValue(" 105 ")
	require.NoError(t, err)
	assert.Equal(t, 105, v)

	_, err = ParseMeterValue("")
	assert.EqualError(t, err, "Please enter a meter value")

	_, err = ParseMeterValue("10.5")
	assert.EqualError(t, err, "Please enter a whole number (integer) value")

	_, err = ParseMeterValue("abc")
	assert.EqualError(t, err, "Please enter a whole number (integer) value")
}

func TestImage(t *testing.T) {
	assert.NoError(t, Image("meter.jpg", 1024))
	assert.NoError(t, Image("METER.PNG", 1024))
	assert.NoError(t, Image("scan.tiff", 1024))

	err := Image("meter.jpg", 10*1024*1024+1)
	assert.EqualError(t, err, "File size exceeds 10MB limit")

	err = Image("meter.gif", 1024)
	assert.EqualError(t, err, "Only PNG, TIFF, JPG, and JPEG files are allowed")
}
