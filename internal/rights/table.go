package rights

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airpass/airpass/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// Bracket is one row of the rights table. When is a CEL boolean expression over
// delay_hours (double) and flight_type (string); an empty When always matches.
type Bracket struct {
	When         string   `json:"when,omitempty" yaml:"when,omitempty"`
	Compensation float64  `json:"compensation" yaml:"compensation"`
	Assistance   []string `json:"assistance,omitempty" yaml:"assistance,omitempty"`
	CanRefuse    []string `json:"canRefuse,omitempty" yaml:"canRefuse,omitempty"`
	Provisions   []string `json:"provisions,omitempty" yaml:"provisions,omitempty"`
}

// Table maps an issue type to its brackets, tried in order.
type Table struct {
	Issues map[string][]Bracket `json:"issues" yaml:"issues"`
}

var delayProvisions = []string{
	"Airline must inform passengers about delay",
	"Provide regular updates every 30 minutes",
}

// DefaultTable returns the built-in DGCA entitlement table.
func DefaultTable() Table {
	return Table{Issues: map[string][]Bracket{
		string(domain.IssueDelay): {
			{
				When:         "delay_hours >= 6.0",
				Compensation: 10000,
				Assistance:   []string{"Meal vouchers", "Hotel accommodation", "Transportation", "Communication facilities"},
				Provisions:   delayProvisions,
			},
			{
				When:       "delay_hours >= 2.0",
				Assistance: []string{"Refreshments/meals", "Hotel accommodation if overnight delay"},
				Provisions: delayProvisions,
			},
			{
				Provisions: delayProvisions,
			},
		},
		string(domain.IssueCancellation): {
			{
				Compensation: 10000,
				Assistance:   []string{"Alternate flight or full refund", "Meal vouchers", "Hotel accommodation if required"},
				CanRefuse:    []string{"Re-routing on unsafe aircraft", "Compensation less than legal minimum"},
				Provisions:   []string{"Cancellation must be informed at least 2 weeks before departure"},
			},
		},
		string(domain.IssueDeniedBoarding): {
			{
				Compensation: 20000,
				Assistance:   []string{"200% of ticket fare as compensation", "Alternate flight arrangement"},
				Provisions:   []string{"Compulsory for airlines to ask for volunteers first"},
			},
		},
		string(domain.IssueBaggageLoss): {
			{
				Compensation: 20000,
				Assistance:   []string{"Interim compensation for essentials", "Compensation up to ₹20,000 per kg"},
				Provisions:   []string{"Must file complaint within 7 days of baggage loss"},
			},
		},
		string(domain.IssueBaggageDelay): {
			{
				Assistance: []string{"Interim compensation for essentials", "Delivery of delayed baggage to address"},
				Provisions: []string{"Compensation for essential purchases"},
			},
		},
	}}
}

// LoadTable reads a table from a .yaml, .yml or .json file. Unknown fields are rejected.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read rights table: %w", err)
	}

	var t Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalWithOptions(data, &t, yaml.Strict()); err != nil {
			return Table{}, fmt.Errorf("failed to parse rights table %s: %w", path, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&t); err != nil {
			return Table{}, fmt.Errorf("failed to parse rights table %s: %w", path, err)
		}
	default:
		return Table{}, fmt.Errorf("unsupported rights table format: %s", path)
	}

	if len(t.Issues) == 0 {
		return Table{}, fmt.Errorf("rights table %s defines no issues", path)
	}
	return t, nil
}
