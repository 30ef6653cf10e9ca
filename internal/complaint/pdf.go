package complaint

import (
	"fmt"
	"io"

	"github.com/airpass/airpass/internal/domain"
	"github.com/go-pdf/fpdf"
)

const (
	pageMargin  = 18.0
	lineHeight  = 6.0
	headingSize = 14.0
	bodySize    = 12.0
)

const pdfDisclaimer = "Disclaimer: This letter is generated for informational purposes only. " +
	"It is not legal advice. Consult with a legal professional for specific guidance."

// RenderPDF writes the complaint letter as an A4 PDF to w.
func (a *Assembler) RenderPDF(w io.Writer, c domain.Complaint) error {
	now := a.now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCreationDate(now)
	pdf.SetTitle(fmt.Sprintf("Complaint Letter - %s %s", c.Airline, c.FlightNumber), true)
	pdf.SetAuthor(Platform, true)
	pdf.SetSubject("Flight Complaint: "+c.IssueType, true)

	// Core fonts are cp1252; map UTF-8 input onto it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	heading := func(text string) {
		pdf.SetFont("Helvetica", "BU", headingSize)
		pdf.CellFormat(0, lineHeight+2, tr(text), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodySize)
	}
	text := func(format string, args ...any) {
		pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf(format, args...)), "", "L", false)
	}
	gap := func() { pdf.Ln(lineHeight / 2) }

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "FORMAL COMPLAINT LETTER", "", 1, "C", false, 0, "")
	gap()

	pdf.SetFont("Helvetica", "", bodySize)
	text("Date: %s", a.formatDate(now))
	gap()

	heading("Passenger Details:")
	text("Name: %s", c.PassengerName)
	text("Email: %s", c.PassengerEmail)
	if c.PassengerAddress != "" {
		text("Address: %s", c.PassengerAddress)
	}
	gap()

	heading("Flight Details:")
	text("Airline: %s", c.Airline)
	text("Flight Number: %s", c.FlightNumber)
	if c.PNR != "" {
		text("PNR: %s", c.PNR)
	}
	text("Flight Date: %s", a.formatDate(c.FlightDate.Time))
	text("Route: %s to %s", c.DepartureAirport, c.ArrivalAirport)
	gap()

	heading("Issue Details:")
	text("Type: %s", c.IssueType)
	gap()
	text("Description:")
	pdf.MultiCell(0, lineHeight, tr(c.IssueDescription), "", "J", false)
	gap()

	if c.CompensationAmount != nil && *c.CompensationAmount > 0 {
		heading("Compensation Requested:")
		text("Amount: INR %s", a.formatAmount(*c.CompensationAmount))
		gap()
	}

	if len(c.SupportingDocs) > 0 {
		heading("Supporting Documents:")
		for i, doc := range c.SupportingDocs {
			text("%d. %s: %s", i+1, doc.Type, doc.Description)
		}
		gap()
	}

	heading("Legal References:")
	for _, ref := range legalBasis {
		text("• %s", ref)
	}
	text("• Airline's Conditions of Carriage")
	gap()

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(200, 0, 0)
	pdf.MultiCell(0, 5, pdfDisclaimer, "", "C", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render complaint pdf: %w", err)
	}
	return nil
}
