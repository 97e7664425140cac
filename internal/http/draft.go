package http

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"store-register/internal/charges"
	"store-register/internal/config"
	"store-register/internal/session"
)

// Draft Response Wrapper
type draftResponse struct {
	*session.Draft
	BTotals      charges.Totals  `json:"b_totals"`
	KTotals      charges.Totals  `json:"k_totals"`
	GrandCharges decimal.Decimal `json:"grand_charges"`
}

func newDraftResponse(d *session.Draft) draftResponse {
	b, k := d.Totals()
	return draftResponse{Draft: d, BTotals: b, KTotals: k, GrandCharges: b.TotalCharge.Add(k.TotalCharge)}
}

// loadDraft returns the caller's draft, starting a new one for a fresh session.
func (s *Server) loadDraft(c *gin.Context) (*session.Draft, bool) {
	id := c.GetString(sessionKey)
	d, err := s.sessions.Load(c.Request.Context(), id)
	if errors.Is(err, session.ErrNoSession) {
		return session.NewDraft(s.defaultPct), true
	}
	if err != nil {
		s.fail(c, "loadDraft", err)
		return nil, false
	}
	return d, true
}

func (s *Server) saveDraft(c *gin.Context, d *session.Draft) bool {
	if err := s.sessions.Save(c.Request.Context(), c.GetString(sessionKey), d); err != nil {
		s.fail(c, "saveDraft", err)
		return false
	}
	return true
}

// GET /v1/draft
func (s *Server) getDraft(c *gin.Context) {
	d, ok := s.loadDraft(c)
	if !ok {
		return
	}
	if !s.saveDraft(c, d) {
		return
	}
	c.JSON(200, newDraftResponse(d))
}

// PUT /v1/draft
func (s *Server) updateDraft(c *gin.Context) {
	var input session.Fields
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	d, ok := s.loadDraft(c)
	if !ok {
		return
	}
	if err := d.Apply(input); err != nil {
		s.fail(c, "updateDraft", err)
		return
	}
	if !s.saveDraft(c, d) {
		return
	}
	c.JSON(200, newDraftResponse(d))
}

// POST /v1/draft/lines/:category
func (s *Server) addDraftLine(c *gin.Context) {
	cat, err := session.ParseCategory(c.Param("category"))
	if err != nil {
		s.fail(c, "addDraftLine", err)
		return
	}
	d, ok := s.loadDraft(c)
	if !ok {
		return
	}
	if err := d.AddLine(cat); err != nil {
		s.fail(c, "addDraftLine", err)
		return
	}
	if !s.saveDraft(c, d) {
		return
	}
	c.JSON(200, newDraftResponse(d))
}

// PUT /v1/draft/lines/:category/:index
func (s *Server) setDraftLine(c *gin.Context) {
	cat, err := session.ParseCategory(c.Param("category"))
	if err != nil {
		s.fail(c, "setDraftLine", err)
		return
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid index"})
		return
	}
	var item charges.LineItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	d, ok := s.loadDraft(c)
	if !ok {
		return
	}
	if err := d.SetLine(cat, idx, item); err != nil {
		s.fail(c, "setDraftLine", err)
		return
	}
	if !s.saveDraft(c, d) {
		return
	}
	c.JSON(200, newDraftResponse(d))
}

// POST /v1/draft/reset
func (s *Server) resetDraft(c *gin.Context) {
	d, ok := s.loadDraft(c)
	if !ok {
		return
	}
	d.Reset()
	if !s.saveDraft(c, d) {
		return
	}
	c.JSON(200, newDraftResponse(d))
}

// POST /v1/draft/submit
func (s *Server) submitDraft(c *gin.Context) {
	d, ok := s.loadDraft(c)
	if !ok {
		return
	}
	entry, err := d.Submit(c.Request.Context(), s.store)
	if err != nil {
		s.fail(c, "submitDraft", err)
		return
	}
	// the entry is saved by now, so a failed draft save is only logged
	if err := s.sessions.Save(c.Request.Context(), c.GetString(sessionKey), d); err != nil {
		config.LogError(s.log, "http", "submitDraft", c.Request.URL.Path, gin.H{"entry_id": entry.ID}, err)
	}
	c.JSON(201, gin.H{"entry": entry, "draft": newDraftResponse(d)})
}

// DELETE /v1/session
func (s *Server) endSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Request.Context(), c.GetString(sessionKey)); err != nil {
		s.fail(c, "endSession", err)
		return
	}
	c.SetCookie(s.cfg.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(200, gin.H{"message": "session ended"})
}
