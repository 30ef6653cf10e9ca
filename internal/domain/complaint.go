package domain

// SupportingDoc describes one document attached to a complaint.
type SupportingDoc struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Complaint is the fully-populated record a complaint document is rendered from.
type Complaint struct {
	PassengerName      string          `json:"passengerName"`
	PassengerEmail     string          `json:"passengerEmail"`
	PassengerAddress   string          `json:"passengerAddress,omitempty"`
	FlightNumber       string          `json:"flightNumber"`
	Airline            string          `json:"airline"`
	PNR                string          `json:"pnr,omitempty"`
	FlightDate         Date            `json:"flightDate"`
	DepartureAirport   string          `json:"departureAirport"`
	ArrivalAirport     string          `json:"arrivalAirport"`
	IssueType          string          `json:"issueType"`
	IssueDescription   string          `json:"issueDescription"`
	CompensationAmount *float64        `json:"compensationAmount,omitempty"`
	SupportingDocs     []SupportingDoc `json:"supportingDocs,omitempty"`
}

// ComplaintEmail is the plain-text rendering of a complaint.
type ComplaintEmail struct {
	EmailText string `json:"emailText"`
	Subject   string `json:"subject"`
	ToEmail   string `json:"toEmail"`
	Reference string `json:"reference"`
}
