package http

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"store-register/internal/models"
	"store-register/internal/report"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

type SummaryResponse struct {
	Date         string `json:"date"`
	Count        int64  `json:"count"`
	TotalB       string `json:"total_b"`
	TotalK       string `json:"total_k"`
	TotalCharges string `json:"total_charges"`
	Downloads    struct {
		XLSX string `json:"xlsx"`
		PDF  string `json:"pdf"`
	} `json:"downloads"`
}

// reportDate reads ?date=, defaulting to today in the store's time zone.
func (s *Server) reportDate(c *gin.Context) (string, bool) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		return s.store.Today(), true
	}
	if !validDate(date) {
		c.JSON(400, gin.H{"error": "date must be YYYY-MM-DD"})
		return "", false
	}
	return date, true
}

func (s *Server) getSummary(c *gin.Context) {
	date, ok := s.reportDate(c)
	if !ok {
		return
	}
	sum, err := s.store.Summary(c.Request.Context(), date)
	if err != nil {
		s.fail(c, "getSummary", err)
		return
	}

	res := SummaryResponse{
		Date:         sum.Date,
		Count:        sum.Count,
		TotalB:       sum.TotalB.StringFixed(2),
		TotalK:       sum.TotalK.StringFixed(2),
		TotalCharges: sum.TotalCharges.StringFixed(2),
	}
	res.Downloads.XLSX = "/v1/reports/xlsx?date=" + date
	res.Downloads.PDF = "/v1/reports/pdf?date=" + date
	c.JSON(200, res)
}

func (s *Server) dailyRows(c *gin.Context) (string, []models.DailyRow, bool) {
	date, ok := s.reportDate(c)
	if !ok {
		return "", nil, false
	}
	entries, err := s.store.ListByDate(c.Request.Context(), date)
	if err != nil {
		s.fail(c, "dailyRows", err)
		return "", nil, false
	}
	return date, report.Rows(entries), true
}

func (s *Server) downloadXLSX(c *gin.Context) {
	date, rows, ok := s.dailyRows(c)
	if !ok {
		return
	}
	data, err := report.XLSX(rows)
	if err != nil {
		s.fail(c, "downloadXLSX", err)
		return
	}
	attachment(c, report.FileName(date, "xlsx"), xlsxContentType, data)
}

func (s *Server) downloadPDF(c *gin.Context) {
	date, rows, ok := s.dailyRows(c)
	if !ok {
		return
	}
	data, err := report.PDF(rows, date)
	if err != nil {
		s.fail(c, "downloadPDF", err)
		return
	}
	attachment(c, report.FileName(date, "pdf"), pdfContentType, data)
}

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(200, contentType, data)
}
