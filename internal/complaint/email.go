package complaint

import (
	"fmt"
	"strings"

	"github.com/airpass/airpass/internal/domain"
)

// Email renders the plain-text complaint addressed to the airline.
func (a *Assembler) Email(c domain.Complaint) (domain.ComplaintEmail, error) {
	ref, err := Reference(c)
	if err != nil {
		return domain.ComplaintEmail{}, err
	}

	subject := Subject(c)

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("Subject: %s", subject)
	line("")
	line("To: %s Customer Relations", c.Airline)
	line("")
	line("Dear Sir/Madam,")
	line("")
	line("I am writing to formally complain about my recent flight experience with %s.", c.Airline)
	line("")
	line("**Passenger Details:**")
	line("Name: %s", c.PassengerName)
	line("Email: %s", c.PassengerEmail)
	if c.PNR != "" {
		line("PNR: %s", c.PNR)
	}
	line("")
	line("**Flight Details:**")
	line("Flight Number: %s", c.FlightNumber)
	line("Date: %s", a.formatDate(c.FlightDate.Time))
	line("Route: %s to %s", c.DepartureAirport, c.ArrivalAirport)
	line("")
	line("**Issue:**")
	line("Type: %s", c.IssueType)
	line("")
	line("Description:")
	line("%s", c.IssueDescription)
	line("")
	line("**Compensation Requested:**")
	if c.CompensationAmount != nil && *c.CompensationAmount > 0 {
		line("Amount: ₹%s", a.formatAmount(*c.CompensationAmount))
	} else {
		line("As per applicable regulations")
	}
	line("")
	line("**Supporting Documents:**")
	if len(c.SupportingDocs) == 0 {
		line("Attached separately")
	}
	for _, doc := range c.SupportingDocs {
		line("• %s: %s", doc.Type, doc.Description)
	}
	line("")
	line("**Legal Basis:**")
	line("This complaint is made with reference to:")
	for i, ref := range legalBasis {
		line("%d. %s", i+1, ref)
	}
	line("%d. %s's published Conditions of Carriage", len(legalBasis)+1, c.Airline)
	line("")
	line("I expect a response within 30 days as per regulatory requirements.")
	line("")
	line("Sincerely,")
	line("%s", c.PassengerName)
	line("%s", c.PassengerEmail)
	line("")
	line("---")
	line("Generated via %s", Platform)
	line("This is not legal advice. Consult a legal professional for specific guidance.")

	return domain.ComplaintEmail{
		EmailText: b.String(),
		Subject:   subject,
		ToEmail:   RecipientEmail(c.Airline),
		Reference: ref,
	}, nil
}
