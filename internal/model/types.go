package model

// MeterKind names one utility meter family. The backend speaks the short
// lowercase form; the UI shows the fixed label.
type MeterKind string

const (
	Gas         MeterKind = "gas"
	Electricity MeterKind = "electricity"
	Water       MeterKind = "water"
	Heating     MeterKind = "heating"
)

var kindLabels = map[MeterKind]string{
	Gas:         "Gas meter",
	Electricity: "Electricity meter",
	Water:       "Water meter",
	Heating:     "Heating meter",
}

func (k MeterKind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// KindFromLabel maps a display label ("Gas meter") back to the wire form
// ("gas"). Unknown labels pass through lowercased so the server can reject
// them with a real message.
func KindFromLabel(label string) MeterKind {
	for k, l := range kindLabels {
		if l == label {
			return k
		}
	}
	return MeterKind(lowerFirstWord(label))
}

// ApartmentSnapshot is the tenant's own apartment as returned by the login
// endpoint. Note the string ID; the admin collection uses numeric IDs.
type ApartmentSnapshot struct {
	ID                 string `json:"id"`
	City               string `json:"city"`
	Street             string `json:"street"`
	Zip                string `json:"zip"`
	GasMeterID         string `json:"gasMeterID"`
	ElectricityMeterID string `json:"electricityMeterID"`
	WaterMeterID       string `json:"waterMeterID"`
}

// Apartment is the full admin-side record including billing parameters.
type Apartment struct {
	ID                   int    `json:"id"`
	City                 string `json:"city"`
	Zip                  string `json:"zip"`
	Street               string `json:"street"`
	GasMeterID           string `json:"gasMeterID"`
	ElectricityMeterID   string `json:"electricityMeterID"`
	WaterMeterID         string `json:"waterMeterID"`
	HeatingMeterID       string `json:"heatingMeterID,omitempty"`
	Deadline             int    `json:"deadline"`
	Language             string `json:"language"`
	Rent                 int    `json:"rent"`
	MaintenanceFee       int    `json:"maintenanceFee,omitempty"`
	GasUnitPrice         int    `json:"gasUnitPrice,omitempty"`
	ElectricityUnitPrice int    `json:"electricityUnitPrice,omitempty"`
	WaterUnitPrice       int    `json:"waterUnitPrice,omitempty"`
}

// DisplayName is the "City, Street" form used by every apartment picker.
func (a Apartment) DisplayName() string {
	return a.City + ", " + a.Street
}

type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	ApartmentID int    `json:"apartmentId"`
}

func (u User) DisplayName() string {
	return u.Username + " (" + u.Email + ")"
}

// LoginResponse carries the session-establishing payload. The three actual
// readings are optional: an empty field means the apartment has no meter of
// that kind.
type LoginResponse struct {
	Message           string            `json:"message"`
	Token             string            `json:"token"`
	Apartment         ApartmentSnapshot `json:"apartment"`
	ActualGas         string            `json:"actualGas,omitempty"`
	ActualElectricity string            `json:"actualElectricity,omitempty"`
	ActualWater       string            `json:"actualWater,omitempty"`
	IsAdmin           bool              `json:"isAdmin,omitempty"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Token       string `json:"token"`
	ApartmentID string `json:"apartmentId"`
}

// MeterReading is one row of the admin history list.
type MeterReading struct {
	Date  string `json:"date"`
	Value string `json:"value"`
	Image string `json:"image,omitempty"`
}

// InvoiceRequest mirrors the createInvoice payload field for field. The
// backend renders the PDF; everything here is presentation data.
type InvoiceRequest struct {
	ApartmentAddress               string `json:"apartmentAddress"`
	Email                          string `json:"email"`
	Rent                           string `json:"rent"`
	PreviousGas                    string `json:"previousGas"`
	PreviousGasDate                string `json:"previousGasDate"`
	ActualGas                      string `json:"actualGas"`
	ActualGasDate                  string `json:"actualGasDate"`
	GasCost                        string `json:"gasCost"`
	GasNewMeterConsumption         string `json:"gasNewMeterConsumption"`
	PreviousElectricity            string `json:"previousElectricity"`
	PreviousElectricityDate        string `json:"previousElectricityDate"`
	ActualElectricity              string `json:"actualElectricity"`
	ActualElectricityDate          string `json:"actualElectricityDate"`
	ElectricityCost                string `json:"electricityCost"`
	ElectricityNewMeterConsumption string `json:"electricityNewMeterConsumption"`
	PreviousWater                  string `json:"previousWater"`
	PreviousWaterDate              string `json:"previousWaterDate"`
	ActualWater                    string `json:"actualWater"`
	ActualWaterDate                string `json:"actualWaterDate"`
	WaterCost                      string `json:"waterCost"`
	WaterNewMeterConsumption       string `json:"waterNewMeterConsumption"`
	PreviousHeating                string `json:"previousHeating"`
	PreviousHeatingDate            string `json:"previousHeatingDate"`
	ActualHeating                  string `json:"actualHeating"`
	ActualHeatingDate              string `json:"actualHeatingDate"`
	HeatingCost                    string `json:"heatingCost"`
	HeatingNewMeterConsumption     string `json:"heatingNewMeterConsumption"`
	Cleaning                       string `json:"cleaning"`
	CommonCost                     string `json:"commonCost"`
	TotalSum                       string `json:"totalSum"`
	OtherText                      string `json:"otherText"`
	OtherSum                       string `json:"otherSum"`
	Language                       string `json:"language"`
	MaintenanceFee                 string `json:"maintenanceFee"`
}

type InvoiceResponse struct {
	InvoicePdf64     string `json:"invoicePdf64"`
	Email            string `json:"email"`
	ApartmentAddress string `json:"apartmentAddress"`
	Language         string `json:"language"`
}

// InvoiceDraft is the hand-off between invoice creation and the preview/send
// screen, persisted so the preview survives a view rebuild.
type InvoiceDraft struct {
	PDF64            string
	Email            string
	ApartmentAddress string
	Language         string
}

func (d InvoiceDraft) Empty() bool { return d.PDF64 == "" }

func lowerFirstWord(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			break
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
