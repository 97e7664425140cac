package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"store-register/internal/charges"
	"store-register/internal/config"
	"store-register/internal/ledger"
	"store-register/internal/models"
	"store-register/internal/session"
)

//go:embed schemas/entry.schema.json
var entrySchema string

// EntryStore is the ledger surface the handlers use.
type EntryStore interface {
	session.Creator
	ListByDate(ctx context.Context, date string) ([]models.Entry, error)
	ListAll(ctx context.Context) ([]models.Entry, error)
	Get(ctx context.Context, id uint) (*models.Entry, error)
	Update(ctx context.Context, id uint, in ledger.EntryUpdate) (*models.Entry, error)
	Delete(ctx context.Context, id uint) error
	Summary(ctx context.Context, date string) (ledger.Summary, error)
	Today() string
}

type Server struct {
	cfg        *config.Config
	store      EntryStore
	sessions   session.Store
	validator  *gojsonschema.Schema
	log        *logrus.Logger
	defaultPct decimal.Decimal
}

func NewServer(cfg *config.Config, store EntryStore, sessions session.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsFor(cfg))
	r.Use(logging())

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(entrySchema))
	if err != nil {
		panic(err)
	}

	s := &Server{
		cfg:        cfg,
		store:      store,
		sessions:   sessions,
		validator:  schema,
		log:        config.GetLogger(),
		defaultPct: decimal.NewFromFloat(cfg.DefaultChargePct),
	}

	v1 := r.Group("/v1")

	// New Entry
	draft := v1.Group("", SessionMiddleware(cfg))
	{
		draft.GET("/draft", s.getDraft)
		draft.PUT("/draft", s.updateDraft)
		draft.POST("/draft/lines/:category", s.addDraftLine)
		draft.PUT("/draft/lines/:category/:index", s.setDraftLine)
		draft.POST("/draft/reset", s.resetDraft)
		draft.POST("/draft/submit", s.submitDraft)
		draft.DELETE("/session", s.endSession)
	}

	// Today's Entries
	v1.GET("/today", s.listToday)

	// All Entries / Edit
	v1.POST("/entries", s.saveEntry)
	v1.GET("/entries", s.listEntries)
	v1.GET("/entries/:id", s.getEntry)
	v1.PUT("/entries/:id", s.updateEntry)
	v1.DELETE("/entries/:id", s.deleteEntry)

	// Today Summary
	v1.GET("/summary", s.getSummary)
	v1.GET("/reports/xlsx", s.downloadXLSX)
	v1.GET("/reports/pdf", s.downloadPDF)

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

type lineInput struct {
	Amount    decimal.Decimal  `json:"amount"`
	ChargePct *decimal.Decimal `json:"charge_pct"`
}

type createEntryRequest struct {
	CustomerType models.CustomerType `json:"customer_type"`
	CustomerName string              `json:"customer_name"`
	PaymentMode  models.PaymentMode  `json:"payment_mode"`
	Remarks      string              `json:"remarks"`
	BLines       []lineInput         `json:"b_lines"`
	KLines       []lineInput         `json:"k_lines"`
}

func (s *Server) lineItems(in []lineInput) []charges.LineItem {
	items := make([]charges.LineItem, 0, len(in))
	for _, l := range in {
		pct := s.defaultPct
		if l.ChargePct != nil {
			pct = *l.ChargePct
		}
		items = append(items, charges.LineItem{Amount: l.Amount, ChargePct: pct})
	}
	return items
}

// saveEntry creates an entry in one call from its line items, bypassing the session draft.
func (s *Server) saveEntry(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "failed to read body"})
		return
	}

	res, err := s.validator.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid_json"})
		return
	}
	if !res.Valid() {
		d := []string{}
		for _, e := range res.Errors() {
			d = append(d, e.String())
		}
		c.JSON(422, gin.H{"error": "schema_invalid", "details": d})
		return
	}

	var req createEntryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if req.CustomerType == "" {
		req.CustomerType = models.CustomerOffice
	}
	if req.PaymentMode == "" {
		req.PaymentMode = models.PaymentCash
	}

	b := charges.Compute(s.lineItems(req.BLines))
	k := charges.Compute(s.lineItems(req.KLines))
	entry, err := s.store.Create(c.Request.Context(), ledger.NewEntry{
		CustomerType: req.CustomerType,
		CustomerName: req.CustomerName,
		PaymentMode:  req.PaymentMode,
		BAmount:      b.TotalAmount,
		BCharges:     b.TotalCharge,
		KAmount:      k.TotalAmount,
		KCharges:     k.TotalCharge,
		Remarks:      req.Remarks,
	})
	if err != nil {
		s.fail(c, "saveEntry", err)
		return
	}

	c.JSON(201, entry)
}

func (s *Server) listEntries(c *gin.Context) {
	var (
		entries []models.Entry
		err     error
	)
	if date := strings.TrimSpace(c.Query("date")); date != "" {
		if !validDate(date) {
			c.JSON(400, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		entries, err = s.store.ListByDate(c.Request.Context(), date)
	} else {
		entries, err = s.store.ListAll(c.Request.Context())
	}
	if err != nil {
		s.fail(c, "listEntries", err)
		return
	}

	s.log.WithField("count", len(entries)).Debug("listEntries")
	c.JSON(200, entries)
}

func (s *Server) getEntry(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	entry, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "getEntry", err)
		return
	}

	c.JSON(200, entry)
}

type updateEntryRequest struct {
	CustomerName *string             `json:"customer_name"`
	PaymentMode  *models.PaymentMode `json:"payment_mode" binding:"omitempty,oneof=Cash UPI"`
	BAmount      *decimal.Decimal    `json:"b_amount"`
	BCharges     *decimal.Decimal    `json:"b_charges"`
	KAmount      *decimal.Decimal    `json:"k_amount"`
	KCharges     *decimal.Decimal    `json:"k_charges"`
	Remarks      *string             `json:"remarks"`
}

// updateEntry edits the selected entry. Fields absent from the body keep their
// stored values; grand charges are always recomputed.
func (s *Server) updateEntry(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	var input updateEntryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	entry, err := s.store.Get(ctx, id)
	if err != nil {
		s.fail(c, "updateEntry", err)
		return
	}

	upd := ledger.EntryUpdate{
		CustomerName: entry.CustomerName,
		PaymentMode:  entry.PaymentMode,
		BAmount:      entry.BAmount,
		BCharges:     entry.BCharges,
		KAmount:      entry.KAmount,
		KCharges:     entry.KCharges,
		Remarks:      entry.Remarks,
	}
	if input.CustomerName != nil {
		upd.CustomerName = *input.CustomerName
	}
	if input.PaymentMode != nil {
		upd.PaymentMode = *input.PaymentMode
	}
	if input.BAmount != nil {
		upd.BAmount = *input.BAmount
	}
	if input.BCharges != nil {
		upd.BCharges = *input.BCharges
	}
	if input.KAmount != nil {
		upd.KAmount = *input.KAmount
	}
	if input.KCharges != nil {
		upd.KCharges = *input.KCharges
	}
	if input.Remarks != nil {
		upd.Remarks = *input.Remarks
	}

	updated, err := s.store.Update(ctx, id, upd)
	if err != nil {
		s.fail(c, "updateEntry", err)
		return
	}

	c.JSON(200, updated)
}

func (s *Server) deleteEntry(c *gin.Context) {
	id, ok := entryID(c)
	if !ok {
		return
	}

	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, "deleteEntry", err)
		return
	}

	c.JSON(200, gin.H{"message": "entry deleted"})
}

func (s *Server) listToday(c *gin.Context) {
	date, ok := s.reportDate(c)
	if !ok {
		return
	}
	entries, err := s.store.ListByDate(c.Request.Context(), date)
	if err != nil {
		s.fail(c, "listToday", err)
		return
	}

	rows := make([]models.DailyRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.DailyRow())
	}
	c.JSON(200, gin.H{"date": date, "entries": rows})
}

// fail maps store and session errors onto HTTP statuses.
func (s *Server) fail(c *gin.Context, funcName string, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(422, gin.H{"error": "validation_failed", "field": verr.Field, "message": verr.Message})
	case errors.Is(err, ledger.ErrNotFound):
		s.log.WithFields(logrus.Fields{"funcName": funcName, "path": c.Request.URL.Path}).Warn(err.Error())
		c.JSON(404, gin.H{"error": "entry not found"})
	case errors.Is(err, session.ErrUnknownCategory), errors.Is(err, session.ErrLineOutOfRange):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrUnavailable):
		config.LogError(s.log, "http", funcName, c.Request.URL.Path, nil, err)
		c.JSON(503, gin.H{"error": "store unavailable"})
	default:
		config.LogError(s.log, "http", funcName, c.Request.URL.Path, nil, err)
		c.JSON(500, gin.H{"error": "internal error"})
	}
}

func entryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func validDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func corsFor(cfg *config.Config) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowOrigins == "" || cfg.AllowOrigins == "*" {
		cc.AllowAllOrigins = true
	} else {
		for _, o := range strings.Split(cfg.AllowOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cc.AllowOrigins = append(cc.AllowOrigins, o)
			}
		}
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}
