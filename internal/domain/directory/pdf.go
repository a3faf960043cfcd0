package directory

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderProfilePDF writes a one-page profile. Callers redact the record
// for the viewer before rendering.
func RenderProfilePDF(w io.Writer, emp Employee, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Employee profile: "+emp.FullName), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(emp.FullName))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	rows := [][2]string{
		{"Email", emp.Email},
		{"Department", emp.Department},
		{"Designation", emp.Designation},
		{"Employment type", emp.EmployeeType},
		{"Hire date", emp.HireDate.Format(time.DateOnly)},
		{"Date of birth", emp.DateOfBirth.Format(time.DateOnly)},
		{"Gender", emp.Gender},
		{"Salary", fmt.Sprintf("%.2f", emp.Salary)},
		{"Country", countryLabel(emp)},
		{"IBAN", emp.IBAN},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(50, 8, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, tr(row[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Generated "+generatedAt.UTC().Format(time.RFC3339))

	return pdf.Output(w)
}

func countryLabel(emp Employee) string {
	if emp.CountryCode == "" {
		return emp.Country
	}
	return fmt.Sprintf("%s (%s)", emp.Country, emp.CountryCode)
}
