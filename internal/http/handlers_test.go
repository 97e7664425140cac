package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"store-register/internal/config"
	"store-register/internal/database"
	"store-register/internal/ledger"
	"store-register/internal/models"
	"store-register/internal/report"
	"store-register/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.SetLogLevel("error")
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	store  *ledger.Store
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, session.NewMemoryStore(time.Hour))
}

func newTestServerWith(t *testing.T, sessions session.Store) *testServer {
	t.Helper()
	cfg := &config.Config{
		AllowOrigins:     "*",
		DBDriver:         "sqlite",
		DBPath:           filepath.Join(t.TempDir(), "store.db"),
		DefaultChargePct: 0.5,
		SessionCookie:    "store_session",
		SessionTTL:       time.Hour,
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	now := time.Date(2026, 10, 16, 14, 5, 0, 0, time.UTC)
	store := ledger.New(db, ledger.WithClock(func() time.Time { return now }), ledger.WithLocation(time.UTC))
	return &testServer{
		t:      t,
		engine: NewServer(cfg, store, sessions),
		store:  store,
	}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				ts.t.Fatal(err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "store_session" && c.Value != "" {
			ts.cookie = c
		}
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do("GET", "/health", nil); w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestDraftFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/v1/draft", nil)
	if w.Code != 200 || ts.cookie == nil {
		t.Fatalf("GET draft status = %d cookie = %v", w.Code, ts.cookie)
	}
	d := decode[draftResponse](t, w)
	if d.CustomerType != models.CustomerOffice || d.PaymentMode != models.PaymentCash || len(d.B) != 1 || len(d.K) != 1 {
		t.Fatalf("initial draft = %+v", d.Draft)
	}

	if w := ts.do("PUT", "/v1/draft", map[string]any{"customer_name": "Ravi", "payment_mode": "UPI"}); w.Code != 200 {
		t.Fatalf("PUT draft status = %d body = %s", w.Code, w.Body)
	}
	if w := ts.do("PUT", "/v1/draft/lines/b/0", map[string]any{"amount": 1000, "charge_pct": 0.5}); w.Code != 200 {
		t.Fatalf("set b line status = %d body = %s", w.Code, w.Body)
	}
	if w := ts.do("PUT", "/v1/draft/lines/k/0", map[string]any{"amount": 500, "charge_pct": 1.0}); w.Code != 200 {
		t.Fatalf("set k line status = %d", w.Code)
	}
	w = ts.do("POST", "/v1/draft/lines/k", nil)
	d = decode[draftResponse](t, w)
	if len(d.K) != 2 {
		t.Fatalf("k lines = %d, want 2", len(d.K))
	}
	if !d.GrandCharges.Equal(decimal.NewFromInt(10)) {
		t.Errorf("draft grand charges = %s, want 10", d.GrandCharges)
	}

	w = ts.do("POST", "/v1/draft/submit", nil)
	if w.Code != 201 {
		t.Fatalf("submit status = %d body = %s", w.Code, w.Body)
	}
	res := decode[struct {
		Entry models.Entry  `json:"entry"`
		Draft draftResponse `json:"draft"`
	}](t, w)
	e := res.Entry
	if e.CustomerName != "Ravi" || e.PaymentMode != models.PaymentUPI {
		t.Errorf("entry = %+v", e)
	}
	if !e.BAmount.Equal(decimal.NewFromInt(1000)) || !e.BCharges.Equal(decimal.NewFromInt(5)) ||
		!e.KAmount.Equal(decimal.NewFromInt(500)) || !e.KCharges.Equal(decimal.NewFromInt(5)) ||
		!e.GrandCharges.Equal(decimal.NewFromInt(10)) {
		t.Errorf("entry amounts = %s %s %s %s %s", e.BAmount, e.BCharges, e.KAmount, e.KCharges, e.GrandCharges)
	}
	if res.Draft.CustomerName != "" || len(res.Draft.K) != 1 {
		t.Errorf("draft not reset: %+v", res.Draft.Draft)
	}
}

// failingSaves lets loads through but rejects saves once broken is set.
type failingSaves struct {
	*session.MemoryStore
	broken bool
}

func (f *failingSaves) Save(ctx context.Context, id string, d *session.Draft) error {
	if f.broken {
		return errors.New("session backend down")
	}
	return f.MemoryStore.Save(ctx, id, d)
}

func TestDraftSubmitSurvivesSessionSaveFailure(t *testing.T) {
	sessions := &failingSaves{MemoryStore: session.NewMemoryStore(time.Hour)}
	ts := newTestServerWith(t, sessions)

	if w := ts.do("PUT", "/v1/draft", map[string]any{"customer_name": "Ravi"}); w.Code != 200 {
		t.Fatalf("PUT draft status = %d body = %s", w.Code, w.Body)
	}
	sessions.broken = true

	w := ts.do("POST", "/v1/draft/submit", nil)
	if w.Code != 201 {
		t.Fatalf("submit status = %d body = %s, want 201", w.Code, w.Body)
	}
	res := decode[struct {
		Entry models.Entry `json:"entry"`
	}](t, w)
	if res.Entry.ID == 0 || res.Entry.CustomerName != "Ravi" {
		t.Errorf("entry = %+v", res.Entry)
	}
	all, err := ts.store.ListAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("rows = %d, want 1", len(all))
	}
}

func TestDraftSubmitBlankName(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do("POST", "/v1/draft/submit", nil)
	if w.Code != 422 {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := decode[map[string]string](t, w)
	if body["field"] != "customer_name" {
		t.Errorf("field = %q", body["field"])
	}
	all, _ := ts.store.ListAll(context.Background())
	if len(all) != 0 {
		t.Errorf("rows = %d, want 0", len(all))
	}
}

func TestDraftBadLineRequests(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do("POST", "/v1/draft/lines/x", nil); w.Code != 400 {
		t.Errorf("unknown category status = %d", w.Code)
	}
	if w := ts.do("PUT", "/v1/draft/lines/b/5", map[string]any{"amount": 1}); w.Code != 400 {
		t.Errorf("out of range status = %d", w.Code)
	}
	if w := ts.do("PUT", "/v1/draft", map[string]any{"customer_type": "Walk-in"}); w.Code != 422 {
		t.Errorf("bad customer type status = %d", w.Code)
	}
}

func TestEndSessionStartsFresh(t *testing.T) {
	ts := newTestServer(t)
	ts.do("PUT", "/v1/draft", map[string]any{"customer_name": "Asha"})
	if w := ts.do("DELETE", "/v1/session", nil); w.Code != 200 {
		t.Fatalf("end session status = %d", w.Code)
	}
	w := ts.do("GET", "/v1/draft", nil)
	if d := decode[draftResponse](t, w); d.CustomerName != "" {
		t.Errorf("draft survived session end: %q", d.CustomerName)
	}
}

func createEntry(t *testing.T, ts *testServer, name string) models.Entry {
	t.Helper()
	w := ts.do("POST", "/v1/entries", map[string]any{
		"customer_name": name,
		"customer_type": "Others",
		"b_lines":       []map[string]any{{"amount": 1000, "charge_pct": 0.5}},
		"k_lines":       []map[string]any{{"amount": 500}},
	})
	if w.Code != 201 {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body)
	}
	return decode[models.Entry](t, w)
}

func TestCreateEntryUsesDefaultPct(t *testing.T) {
	ts := newTestServer(t)
	e := createEntry(t, ts, "Ravi")
	if !e.KCharges.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("k charges = %s, want 2.5 from default pct", e.KCharges)
	}
	if !e.GrandCharges.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("grand = %s, want 7.5", e.GrandCharges)
	}
	if e.CustomerType != models.CustomerOthers || e.PaymentMode != models.PaymentCash {
		t.Errorf("type/mode = %s/%s", e.CustomerType, e.PaymentMode)
	}
}

func TestCreateEntrySchemaRejects(t *testing.T) {
	ts := newTestServer(t)
	cases := []map[string]any{
		{"customer_name": ""},
		{"customer_name": "Ravi", "payment_mode": "Card"},
		{"customer_name": "Ravi", "b_lines": []map[string]any{{"amount": -1}}},
		{"customer_name": "Ravi", "k_lines": []map[string]any{{"amount": 1, "charge_pct": 11}}},
		{"payment_mode": "Cash"},
	}
	for i, body := range cases {
		if w := ts.do("POST", "/v1/entries", body); w.Code != 422 {
			t.Errorf("case %d status = %d, want 422", i, w.Code)
		}
	}
	if w := ts.do("POST", "/v1/entries", map[string]any{"customer_name": "   "}); w.Code != 422 {
		t.Errorf("whitespace name status = %d, want 422", w.Code)
	}
	if w := ts.do("POST", "/v1/entries", "{not json"); w.Code != 400 {
		t.Errorf("malformed status = %d, want 400", w.Code)
	}
}

func TestEditAndDelete(t *testing.T) {
	ts := newTestServer(t)
	e := createEntry(t, ts, "Ravi")
	path := fmt.Sprintf("/v1/entries/%d", e.ID)

	w := ts.do("PUT", path, map[string]any{"customer_name": "Ravi K", "k_charges": "1.25", "payment_mode": "UPI"})
	if w.Code != 200 {
		t.Fatalf("update status = %d body = %s", w.Code, w.Body)
	}
	upd := decode[models.Entry](t, w)
	if upd.CustomerName != "Ravi K" || upd.PaymentMode != models.PaymentUPI {
		t.Errorf("updated = %+v", upd)
	}
	if !upd.GrandCharges.Equal(decimal.RequireFromString("6.25")) {
		t.Errorf("grand = %s, want 6.25", upd.GrandCharges)
	}

	if w := ts.do("PUT", path, map[string]any{"payment_mode": "Card"}); w.Code != 400 {
		t.Errorf("bad mode status = %d, want 400", w.Code)
	}

	if w := ts.do("DELETE", path, nil); w.Code != 200 {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := ts.do("GET", path, nil); w.Code != 404 {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := ts.do("DELETE", path, nil); w.Code != 404 {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
	if w := ts.do("PUT", path, map[string]any{"customer_name": "x"}); w.Code != 404 {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
	if w := ts.do("GET", "/v1/entries/abc", nil); w.Code != 400 {
		t.Errorf("bad id = %d, want 400", w.Code)
	}
}

func TestTodayAndList(t *testing.T) {
	ts := newTestServer(t)
	first := createEntry(t, ts, "A")
	second := createEntry(t, ts, "B")

	w := ts.do("GET", "/v1/today", nil)
	today := decode[struct {
		Date    string            `json:"date"`
		Entries []models.DailyRow `json:"entries"`
	}](t, w)
	if today.Date != "2026-10-16" || len(today.Entries) != 2 {
		t.Fatalf("today = %+v", today)
	}
	if today.Entries[0].ID != second.ID || today.Entries[1].ID != first.ID {
		t.Errorf("today order = %d,%d", today.Entries[0].ID, today.Entries[1].ID)
	}
	if today.Entries[0].EntryTime != "14:05:00" {
		t.Errorf("entry time = %s", today.Entries[0].EntryTime)
	}

	w = ts.do("GET", "/v1/entries?date=2026-10-15", nil)
	if got := decode[[]models.Entry](t, w); len(got) != 0 {
		t.Errorf("other day entries = %d", len(got))
	}
	w = ts.do("GET", "/v1/entries", nil)
	if got := decode[[]models.Entry](t, w); len(got) != 2 {
		t.Errorf("all entries = %d", len(got))
	}
	if w := ts.do("GET", "/v1/entries?date=16-10-2026", nil); w.Code != 400 {
		t.Errorf("bad date status = %d", w.Code)
	}
}

func TestSummaryAndReports(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/v1/summary?date=2026-10-16", nil)
	empty := decode[SummaryResponse](t, w)
	if empty.Count != 0 || empty.TotalB != "0.00" || empty.TotalK != "0.00" || empty.TotalCharges != "0.00" {
		t.Errorf("empty summary = %+v", empty)
	}

	createEntry(t, ts, "Ravi")
	createEntry(t, ts, "Asha")

	w = ts.do("GET", "/v1/summary", nil)
	sum := decode[SummaryResponse](t, w)
	if sum.Count != 2 || sum.TotalB != "2000.00" || sum.TotalK != "1000.00" || sum.TotalCharges != "15.00" {
		t.Errorf("summary = %+v", sum)
	}

	w = ts.do("GET", sum.Downloads.XLSX, nil)
	if w.Code != 200 || !strings.Contains(w.Header().Get("Content-Disposition"), "Store_2026-10-16.xlsx") {
		t.Fatalf("xlsx status = %d disposition = %q", w.Code, w.Header().Get("Content-Disposition"))
	}
	rows, err := report.ReadXLSX(w.Body.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].CustomerName != "Asha" || !rows[1].GrandCharges.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("xlsx rows = %+v", rows)
	}

	w = ts.do("GET", sum.Downloads.PDF, nil)
	if w.Code != 200 || w.Header().Get("Content-Type") != pdfContentType {
		t.Fatalf("pdf status = %d type = %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("pdf body is not a PDF")
	}
}
