package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/db"
	"github.com/Simplici0/cotizador/internal/history"
	"github.com/Simplici0/cotizador/internal/metrics"
	"github.com/Simplici0/cotizador/internal/migrations"
	"github.com/Simplici0/cotizador/internal/notify"
	"github.com/Simplici0/cotizador/internal/pricing"
	"github.com/Simplici0/cotizador/internal/seed"
	"github.com/Simplici0/cotizador/internal/settings"
)

var fixedNow = time.Date(2026, 10, 15, 11, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu      sync.Mutex
	records []notify.Record
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, rec notify.Record) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, rec)
	return n.err
}

func (n *recordingNotifier) sent() []notify.Record {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Record(nil), n.records...)
}

type testServer struct {
	*server
	handler  http.Handler
	notifier *recordingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := seed.Run(database, seed.Config{DefaultMarginPercent: decimal.NewFromInt(30)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := settings.NewRepository(database)
	defaults, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	n := &recordingNotifier{}

	srv := &server{
		settings:   repo,
		history:    history.NewLog(history.NewSQLiteBackend(database), logger),
		dispatcher: notify.NewDispatcher(n, time.Second, logger, notify.WithFailureHook(m.NotifyFailed)),
		metrics:    m,
		logger:     logger,
		now:        func() time.Time { return fixedNow },
		ws:         newWorkspace(defaults),
	}
	return &testServer{server: srv, handler: srv.routes(), notifier: n}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/factory/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

const factoryCSV = "PRECIO,UBICACION,T.PERSIANA,MODELO,COLOR,ANCHO,ALTO\n" +
	"\"$1,000\",Sala,Enrollable,Blackout,Blanco,1.5,2\n" +
	"500,Recamara,Sheer,Elegance,Gris,1,1.2\n" +
	",Baño,Romana,,,,\n"

type itemsEnvelope struct {
	Items []pricing.LineItem `json:"items"`
}

func TestQuoteFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.upload(t, "lista.csv", factoryCSV)
	expectStatus(t, rec, http.StatusOK)
	factory := decodeBody[struct {
		Items []pricing.FactoryItem `json:"items"`
	}](t, rec)
	if len(factory.Items) != 2 {
		t.Fatalf("expected unpriced row to be dropped, got %d items", len(factory.Items))
	}

	rec = ts.do(t, http.MethodPut, "/api/workspace", map[string]any{"clientName": "Ana López", "marginPercent": "30"})
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodPost, "/api/items", map[string]any{"ids": []string{factory.Items[0].ID}})
	expectStatus(t, rec, http.StatusCreated)
	added := decodeBody[itemsEnvelope](t, rec)
	if len(added.Items) != 1 || !added.Items[0].SuggestedSalePrice.Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("unexpected added items: %+v", added.Items)
	}

	rec = ts.do(t, http.MethodPut, "/api/adjustments", map[string]any{
		"installation": map[string]any{"quantity": 1, "unitCost": "250"},
	})
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodGet, "/api/quote", nil)
	expectStatus(t, rec, http.StatusOK)
	quote := decodeBody[quoteResponse](t, rec)
	if !quote.Quote.Totals.ClientTotal.Equal(decimal.NewFromInt(1550)) || !quote.Quote.Totals.NetProfit.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected totals: %+v", quote.Quote.Totals)
	}
	if len(quote.Lines) != 1 || !quote.Lines[0].UnitPrice.Equal(decimal.NewFromInt(1550)) {
		t.Fatalf("unexpected visible lines: %+v", quote.Lines)
	}

	rec = ts.do(t, http.MethodPost, "/api/quote/generate", nil)
	expectStatus(t, rec, http.StatusCreated)
	generated := decodeBody[generateResponse](t, rec)
	if generated.Summary.ClientName != "Ana López" || generated.Summary.Number != history.QuoteNumber(fixedNow) {
		t.Fatalf("unexpected summary: %+v", generated.Summary)
	}

	ts.dispatcher.Wait()
	sent := ts.notifier.sent()
	if len(sent) != 1 || !sent[0].Total.Equal(decimal.NewFromInt(1550)) || !sent[0].Installation.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected notifications: %+v", sent)
	}

	rec = ts.do(t, http.MethodGet, "/api/history", nil)
	expectStatus(t, rec, http.StatusOK)
	hist := decodeBody[struct {
		Quotes []history.Summary `json:"quotes"`
	}](t, rec)
	if len(hist.Quotes) != 1 || !hist.Quotes[0].NetProfit.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected history: %+v", hist.Quotes)
	}

	rec = ts.do(t, http.MethodGet, "/api/quote.pdf", nil)
	expectStatus(t, rec, http.StatusOK)
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatal("quote.pdf did not return a PDF")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, generated.Summary.Number) {
		t.Fatalf("content-disposition %q does not carry the quote number", cd)
	}

	rec = ts.do(t, http.MethodGet, "/api/quote.xlsx", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Header().Get("Content-Type") != contentTypeXLSX || !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("quote.xlsx did not return a workbook")
	}

	rec = ts.do(t, http.MethodDelete, "/api/history", nil)
	expectStatus(t, rec, http.StatusNoContent)
	rec = ts.do(t, http.MethodGet, "/api/history", nil)
	hist = decodeBody[struct {
		Quotes []history.Summary `json:"quotes"`
	}](t, rec)
	if len(hist.Quotes) != 0 {
		t.Fatalf("expected empty history, got %d", len(hist.Quotes))
	}

	rec = ts.do(t, http.MethodGet, "/metrics", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `cotizador_quotes_generated_total{policy="A"} 1`) {
		t.Fatal("metrics did not count the generated quote")
	}
}

func TestFailedImportKeepsFactoryList(t *testing.T) {
	ts := newTestServer(t)

	expectStatus(t, ts.upload(t, "lista.csv", factoryCSV), http.StatusOK)

	rec := ts.upload(t, "lista.csv", "MODELO,COLOR\nA,B\n")
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	rec = ts.upload(t, "lista.pdf", "whatever")
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	rec = ts.do(t, http.MethodGet, "/api/factory", nil)
	factory := decodeBody[struct {
		Items []pricing.FactoryItem `json:"items"`
	}](t, rec)
	if len(factory.Items) != 2 {
		t.Fatalf("failed import replaced the factory list: %d items", len(factory.Items))
	}
}

func TestItemUpdates(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.upload(t, "lista.csv", factoryCSV), http.StatusOK)

	rec := ts.do(t, http.MethodPost, "/api/items", map[string]any{"all": true})
	expectStatus(t, rec, http.StatusCreated)
	items := decodeBody[itemsEnvelope](t, rec).Items
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	id := items[1].ID

	rec = ts.do(t, http.MethodPatch, "/api/items/"+id, map[string]any{"quantity": 3, "salePrice": "700"})
	expectStatus(t, rec, http.StatusOK)
	item := decodeBody[struct {
		Quantity int `json:"quantity"`
		Price    struct {
			Kind  string          `json:"kind"`
			Value decimal.Decimal `json:"value"`
		} `json:"price"`
	}](t, rec)
	if item.Quantity != 3 || item.Price.Kind != "overridden" || !item.Price.Value.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("unexpected item after patch: %+v", item)
	}

	rec = ts.do(t, http.MethodPatch, "/api/items/"+id, map[string]any{"clearOverride": true})
	expectStatus(t, rec, http.StatusOK)
	item = decodeBody[struct {
		Quantity int `json:"quantity"`
		Price    struct {
			Kind  string          `json:"kind"`
			Value decimal.Decimal `json:"value"`
		} `json:"price"`
	}](t, rec)
	if item.Price.Kind != "computed" || !item.Price.Value.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("clear override did not restore suggested price: %+v", item)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"zero quantity", http.MethodPatch, "/api/items/" + id, map[string]any{"quantity": 0}, http.StatusBadRequest},
		{"negative price", http.MethodPatch, "/api/items/" + id, map[string]any{"salePrice": "-1"}, http.StatusBadRequest},
		{"unknown field", http.MethodPatch, "/api/items/" + id, map[string]any{"qty": 2}, http.StatusBadRequest},
		{"unknown item", http.MethodPatch, "/api/items/missing", map[string]any{"quantity": 2}, http.StatusNotFound},
		{"delete unknown item", http.MethodDelete, "/api/items/missing", nil, http.StatusNotFound},
		{"add unknown factory id", http.MethodPost, "/api/items", map[string]any{"ids": []string{"nope"}}, http.StatusNotFound},
		{"add without ids", http.MethodPost, "/api/items", map[string]any{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, ts.do(t, tt.method, tt.path, tt.body), tt.want)
		})
	}

	expectStatus(t, ts.do(t, http.MethodDelete, "/api/items/"+id, nil), http.StatusNoContent)
	rec = ts.do(t, http.MethodGet, "/api/items", nil)
	if got := decodeBody[itemsEnvelope](t, rec).Items; len(got) != 1 {
		t.Fatalf("expected 1 item after delete, got %d", len(got))
	}
}

func TestAdjustmentsValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"discount over 100", map[string]any{"discountPercent": "101"}},
		{"negative travel", map[string]any{"travelExpense": "-5"}},
		{"negative commission", map[string]any{"commission": map[string]any{"flat": "-1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPut, "/api/adjustments", tt.body)
			expectStatus(t, rec, http.StatusBadRequest)
			if decodeBody[errorResponse](t, rec).Error == "" {
				t.Fatal("expected error message")
			}
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/adjustments", nil)
	got := decodeBody[adjustmentsBody](t, rec)
	if !got.DiscountPercent.IsZero() || !got.TravelExpense.IsZero() {
		t.Fatalf("rejected adjustments were applied: %+v", got)
	}
}

func TestAutoInstallationChargesPerPiece(t *testing.T) {
	ts := newTestServer(t)
	expectStatus(t, ts.upload(t, "lista.csv", factoryCSV), http.StatusOK)

	rec := ts.do(t, http.MethodPut, "/api/settings", map[string]any{
		"defaultMarginPercent":     "30",
		"policy":                   "A",
		"installationCostPerPiece": "200",
		"autoInstallation":         false,
		"currency":                 "MXN",
	})
	expectStatus(t, rec, http.StatusOK)

	rec = ts.do(t, http.MethodPost, "/api/items", map[string]any{"all": true})
	items := decodeBody[itemsEnvelope](t, rec).Items
	expectStatus(t, ts.do(t, http.MethodPatch, "/api/items/"+items[0].ID, map[string]any{"quantity": 2}), http.StatusOK)

	expectStatus(t, ts.do(t, http.MethodPut, "/api/adjustments", map[string]any{"autoInstallation": true}), http.StatusOK)

	rec = ts.do(t, http.MethodGet, "/api/quote", nil)
	quote := decodeBody[quoteResponse](t, rec)
	// Three pieces at 200 each.
	if !quote.Quote.Breakdown.InstallationTotal.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("installation total = %s, want 600", quote.Quote.Breakdown.InstallationTotal)
	}
}

func TestGenerateSurvivesNotificationFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.notifier.err = errors.New("sheet unavailable")

	rec := ts.do(t, http.MethodPost, "/api/quote/generate", nil)
	expectStatus(t, rec, http.StatusCreated)
	summary := decodeBody[generateResponse](t, rec).Summary
	if summary.ClientName != history.UnnamedClient || summary.ItemCount != 0 {
		t.Fatalf("unexpected summary for empty quote: %+v", summary)
	}

	ts.dispatcher.Wait()
	rec = ts.do(t, http.MethodGet, "/metrics", nil)
	if !strings.Contains(rec.Body.String(), "cotizador_notify_failures_total 1") {
		t.Fatal("notification failure was not counted")
	}
}

func TestWorkspaceAndMeasurements(t *testing.T) {
	ts := newTestServer(t)

	expectStatus(t, ts.do(t, http.MethodPut, "/api/workspace", map[string]any{"policy": "Z"}), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodPut, "/api/workspace", map[string]any{"marginPercent": "-1"}), http.StatusBadRequest)

	rec := ts.do(t, http.MethodPut, "/api/workspace", map[string]any{"policy": "b", "notes": "  Entrega en 10 días "})
	expectStatus(t, rec, http.StatusOK)
	ws := decodeBody[workspaceResponse](t, rec)
	if ws.Policy != pricing.PolicyLumpSum || ws.Notes != "Entrega en 10 días" {
		t.Fatalf("unexpected workspace: %+v", ws)
	}

	expectStatus(t, ts.do(t, http.MethodPost, "/api/measurements", map[string]any{"width": "1.5", "height": "2"}), http.StatusBadRequest)

	rec = ts.do(t, http.MethodPost, "/api/measurements", map[string]any{"blindType": "Enrollable", "width": "1.5", "height": "2", "location": "Sala"})
	expectStatus(t, rec, http.StatusCreated)
	first := decodeBody[struct {
		ID   string          `json:"id"`
		No   int             `json:"no"`
		Area decimal.Decimal `json:"area"`
	}](t, rec)
	if first.No != 1 || !first.Area.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected measurement: %+v", first)
	}
	expectStatus(t, ts.do(t, http.MethodPost, "/api/measurements", map[string]any{"blindType": "Sheer", "width": "1", "height": "1"}), http.StatusCreated)

	rec = ts.do(t, http.MethodGet, "/api/measurements/prequote.xlsx", nil)
	expectStatus(t, rec, http.StatusOK)
	rec = ts.do(t, http.MethodGet, "/api/measurements/prequote.pdf", nil)
	expectStatus(t, rec, http.StatusOK)

	expectStatus(t, ts.do(t, http.MethodDelete, "/api/measurements/"+first.ID, nil), http.StatusNoContent)
	expectStatus(t, ts.do(t, http.MethodDelete, "/api/measurements/"+first.ID, nil), http.StatusNotFound)

	rec = ts.do(t, http.MethodGet, "/api/measurements", nil)
	list := decodeBody[struct {
		Measurements []struct {
			No int `json:"no"`
		} `json:"measurements"`
	}](t, rec)
	if len(list.Measurements) != 1 || list.Measurements[0].No != 1 {
		t.Fatalf("measurements were not renumbered: %+v", list.Measurements)
	}

	rec = ts.do(t, http.MethodDelete, "/api/workspace", nil)
	expectStatus(t, rec, http.StatusOK)
	ws = decodeBody[workspaceResponse](t, rec)
	if ws.Policy != pricing.PolicyItemized || ws.MeasurementCount != 0 || ws.Notes != "" {
		t.Fatalf("reset did not restore defaults: %+v", ws)
	}
}

func TestMalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/api/workspace", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusBadRequest)

	req = httptest.NewRequest(http.MethodPut, "/api/adjustments", nil)
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestHealthAndCatalog(t *testing.T) {
	ts := newTestServer(t)

	expectStatus(t, ts.do(t, http.MethodGet, "/healthz", nil), http.StatusOK)

	rec := ts.do(t, http.MethodGet, "/api/catalog", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Enrollable") {
		t.Fatalf("catalog missing blind types: %s", rec.Body.String())
	}
}
