// Package complaint renders complaint records as e-mail text and PDF letters.
package complaint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/airpass/airpass/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/gowebpki/jcs"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// Platform signs generated documents.
	Platform = "Airport Passenger Rights Platform"

	referenceLength = 12
)

var legalBasis = []string{
	"DGCA Civil Aviation Requirements Section 3, Series M, Part IV",
	"Montreal Convention 1999 (for international flights)",
}

var whitespace = regexp.MustCompile(`\s+`)

// Assembler builds complaint documents. The zero value is not usable; call NewAssembler.
type Assembler struct {
	now     func() time.Time
	printer *message.Printer
}

// NewAssembler returns an Assembler that formats dates and amounts for en-IN.
func NewAssembler() *Assembler {
	return &Assembler{
		now:     time.Now,
		printer: message.NewPrinter(language.MustParse("en-IN")),
	}
}

// Reference returns a short stable identifier derived from the complaint's
// canonical JSON form. Equal complaints always share a reference.
func Reference(c domain.Complaint) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode complaint: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize complaint: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:referenceLength], nil
}

// Subject is the e-mail subject line for c.
func Subject(c domain.Complaint) string {
	return fmt.Sprintf("Formal Complaint Regarding %s Flight %s", c.Airline, c.FlightNumber)
}

// RecipientEmail guesses the airline's customer relations address.
func RecipientEmail(airline string) string {
	return "customer.relations@" + whitespace.ReplaceAllString(strings.ToLower(airline), "") + ".com"
}

// Filename is the attachment name of the PDF letter.
func (a *Assembler) Filename(c domain.Complaint) string {
	return fmt.Sprintf("complaint-%s-%s-%d.pdf", c.Airline, c.FlightNumber, a.now().UnixMilli())
}

func (a *Assembler) formatDate(d time.Time) string {
	return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
}

func (a *Assembler) formatAmount(v float64) string {
	return a.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}
