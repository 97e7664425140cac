package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"store-register/internal/charges"
	"store-register/internal/models"
)

// Layout in points, measured from the bottom-left corner like a PDF canvas.
const (
	topMargin    = 40.0
	bottomMargin = 50.0
	leftMargin   = 40.0
	titleGap     = 30.0
	ruleGap      = 15.0
	rowHeight    = 14.0
	nameWidth    = 15
)

var (
	pdfHeaders = []string{"Time", "Customer", "Mode", "B Amt", "K Amt", "Charges"}
	columnX    = []float64{40, 110, 230, 300, 360, 430}
)

type pdfDoc struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	height float64
	y      float64
}

// PDF renders an A4 portrait daily report. The column header appears only on
// the first page.
func PDF(rows []models.DailyRow, date string) ([]byte, error) {
	doc := layout(rows, date)
	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func layout(rows []models.DailyRow, date string) *pdfDoc {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(fmt.Sprintf("Store Daily Report - %s", date), true)
	w, h := pdf.GetPageSize()

	doc := &pdfDoc{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		height: h,
	}
	pdf.AddPage()

	doc.y = h - topMargin
	pdf.SetFont("Helvetica", "B", 14)
	doc.text(leftMargin, fmt.Sprintf("Store Daily Report - %s", date))

	doc.y -= titleGap
	pdf.SetFont("Helvetica", "", 9)
	for i, head := range pdfHeaders {
		doc.text(columnX[i], head)
	}

	doc.y -= ruleGap
	pdf.Line(leftMargin, h-doc.y, w-leftMargin, h-doc.y)
	doc.y -= ruleGap

	for _, r := range rows {
		if doc.y < bottomMargin {
			pdf.AddPage()
			doc.y = h - topMargin
			pdf.SetFont("Helvetica", "", 9)
		}
		cells := []string{
			r.EntryTime,
			truncate(r.CustomerName, nameWidth),
			string(r.PaymentMode),
			charges.Round2(r.BAmount),
			charges.Round2(r.KAmount),
			charges.Round2(r.GrandCharges),
		}
		for i, c := range cells {
			doc.text(columnX[i], c)
		}
		doc.y -= rowHeight
	}
	return doc
}

// text draws at the current baseline, converting from bottom-up to fpdf's top-down y.
func (d *pdfDoc) text(x float64, s string) {
	d.pdf.Text(x, d.height-d.y, d.tr(s))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
