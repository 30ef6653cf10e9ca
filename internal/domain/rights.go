package domain

// IssueType is the category of disruption a passenger is claiming for.
type IssueType string

const (
	IssueDelay          IssueType = "DELAY"
	IssueCancellation   IssueType = "CANCELLATION"
	IssueDeniedBoarding IssueType = "DENIED_BOARDING"
	IssueBaggageLoss    IssueType = "BAGGAGE_LOSS"
	IssueBaggageDelay   IssueType = "BAGGAGE_DELAY"
)

// RightsCurrency is the currency of every compensation amount in the rights table.
const RightsCurrency = "INR"

// RightsDisclaimer accompanies every entitlement response.
const RightsDisclaimer = "This information is for guidance only and does not constitute legal advice. Regulations vary by specific circumstances. Consult a legal professional for specific cases."

// LegalReferences are attached to every entitlement.
func LegalReferences() []string {
	return []string{
		"DGCA CAR Section 3, Series M, Part IV",
		"Montreal Convention 1999",
	}
}

// RightsQuery is the input to rights resolution.
type RightsQuery struct {
	AirlineCode string    `json:"airlineCode,omitempty"`
	IssueType   IssueType `json:"issueType"`
	DelayHours  float64   `json:"delayHours,omitempty"`
	FlightType  string    `json:"flightType,omitempty"`
}

// RightsEntitlement is the bundle a passenger is owed for an issue.
type RightsEntitlement struct {
	IssueType       IssueType `json:"issueType"`
	FlightType      string    `json:"flightType,omitempty"`
	Compensation    float64   `json:"compensation"`
	Currency        string    `json:"currency"`
	Assistance      []string  `json:"assistance"`
	CanRefuse       []string  `json:"canRefuse"`
	Provisions      []string  `json:"provisions"`
	LegalReferences []string  `json:"legalReferences"`
	Disclaimer      string    `json:"disclaimer"`
}
