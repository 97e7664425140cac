// Package report renders the daily entry listing as a spreadsheet or a PDF.
// Renderers only see the rows they are given; callers do the querying.
package report

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"store-register/internal/models"
)

const sheetName = "Entries"

// Columns is the header row of the spreadsheet, in cell order.
var Columns = []string{"entry_time", "customer_name", "payment_mode", "b_amount", "k_amount", "grand_charges"}

func Rows(entries []models.Entry) []models.DailyRow {
	rows := make([]models.DailyRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.DailyRow())
	}
	return rows
}

func FileName(date, ext string) string {
	return fmt.Sprintf("Store_%s.%s", date, ext)
}

// XLSX writes one header row followed by one row per entry. Amounts are
// numbers and keep up to 15 significant digits.
func XLSX(rows []models.DailyRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			r.EntryTime,
			r.CustomerName,
			string(r.PaymentMode),
			r.BAmount.InexactFloat64(),
			r.KAmount.InexactFloat64(),
			r.GrandCharges.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadXLSX parses a workbook written by XLSX back into rows. IDs are not
// exported, so they come back as zero.
func ReadXLSX(data []byte) ([]models.DailyRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	all, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("workbook has no header row")
	}
	for i, c := range Columns {
		if i >= len(all[0]) || all[0][i] != c {
			return nil, fmt.Errorf("unexpected header %v", all[0])
		}
	}

	rows := make([]models.DailyRow, 0, len(all)-1)
	for n, cells := range all[1:] {
		for len(cells) < len(Columns) {
			cells = append(cells, "")
		}
		amounts := make([]decimal.Decimal, 3)
		for j := range amounts {
			v := cells[3+j]
			if v == "" {
				v = "0"
			}
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", n+2, Columns[3+j], err)
			}
			amounts[j] = d
		}
		rows = append(rows, models.DailyRow{
			EntryTime:    cells[0],
			CustomerName: cells[1],
			PaymentMode:  models.PaymentMode(cells[2]),
			BAmount:      amounts[0],
			KAmount:      amounts[1],
			GrandCharges: amounts[2],
		})
	}
	return rows, nil
}
