package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/cotizador/internal/export"
	"github.com/Simplici0/cotizador/internal/history"
	"github.com/Simplici0/cotizador/internal/importer"
	"github.com/Simplici0/cotizador/internal/lineitem"
	"github.com/Simplici0/cotizador/internal/notify"
	"github.com/Simplici0/cotizador/internal/pricing"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *server) handleFactoryList(w http.ResponseWriter, r *http.Request) {
	s.ws.mu.Lock()
	items := append([]pricing.FactoryItem(nil), s.ws.factory...)
	s.ws.mu.Unlock()

	if items == nil {
		items = []pricing.FactoryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleFactoryImport replaces the factory list with the uploaded price sheet. A failed
// import leaves the previous list in place.
func (s *server) handleFactoryImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	items, err := importer.Parse(file, header.Filename)
	if err != nil {
		s.metrics.ImportFailed()
		s.logger.Warn("factory import failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.ws.mu.Lock()
	s.ws.factory = items
	s.ws.mu.Unlock()

	s.metrics.ImportSucceeded()
	s.logger.Info("factory list imported", "filename", header.Filename, "items", len(items))
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *server) handleItemsList(w http.ResponseWriter, r *http.Request) {
	s.ws.mu.Lock()
	items := s.ws.items.Items()
	s.ws.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type addItemsRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}

// handleItemsAdd copies factory items into the quote at the current margin. Either
// every requested ID is added or none is.
func (s *server) handleItemsAdd(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.All && len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids or all is required")
		return
	}

	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()

	selected := s.ws.factory
	if !req.All {
		selected = make([]pricing.FactoryItem, 0, len(req.IDs))
		for _, id := range req.IDs {
			f, ok := s.ws.findFactory(id)
			if !ok {
				writeError(w, http.StatusNotFound, "factory item "+id+" not found")
				return
			}
			selected = append(selected, f)
		}
	}

	added := s.ws.items.AddAll(selected, s.ws.margin)
	writeJSON(w, http.StatusCreated, map[string]any{"items": added})
}

type updateItemRequest struct {
	Quantity      *int             `json:"quantity"`
	SalePrice     *decimal.Decimal `json:"salePrice"`
	ClearOverride bool             `json:"clearOverride"`
}

func (s *server) handleItemsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SalePrice != nil && req.ClearOverride {
		writeError(w, http.StatusBadRequest, "salePrice and clearOverride are mutually exclusive")
		return
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, lineitem.ErrInvalidQuantity.Error())
		return
	}
	if req.SalePrice != nil && req.SalePrice.IsNegative() {
		writeError(w, http.StatusBadRequest, lineitem.ErrInvalidPrice.Error())
		return
	}

	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()

	item, err := s.ws.items.Get(id)
	if err == nil && req.Quantity != nil {
		item, err = s.ws.items.SetQuantity(id, *req.Quantity)
	}
	if err == nil && req.SalePrice != nil {
		item, err = s.ws.items.Override(id, *req.SalePrice)
	}
	if err == nil && req.ClearOverride {
		item, err = s.ws.items.ClearOverride(id)
	}
	if err != nil {
		writeItemError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (s *server) handleItemsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.ws.mu.Lock()
	err := s.ws.items.Remove(id)
	s.ws.mu.Unlock()
	if err != nil {
		writeItemError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lineitem.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, lineitem.ErrInvalidQuantity), errors.Is(err, lineitem.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "failed to update line item")
	}
}

type adjustmentsBody struct {
	Installation     pricing.Extra   `json:"installation"`
	Scaffolding      pricing.Extra   `json:"scaffolding"`
	Commission       pricing.Extra   `json:"commission"`
	TravelExpense    decimal.Decimal `json:"travelExpense"`
	DiscountPercent  decimal.Decimal `json:"discountPercent"`
	AutoInstallation bool            `json:"autoInstallation"`
}

func (s *server) adjustmentsView() adjustmentsBody {
	return adjustmentsBody{
		Installation:     s.ws.adj.Installation,
		Scaffolding:      s.ws.adj.Scaffolding,
		Commission:       s.ws.adj.Commission,
		TravelExpense:    s.ws.adj.TravelExpense,
		DiscountPercent:  s.ws.adj.DiscountPercent,
		AutoInstallation: s.ws.autoInstallation,
	}
}

func (s *server) handleAdjustmentsGet(w http.ResponseWriter, r *http.Request) {
	s.ws.mu.Lock()
	resp := s.adjustmentsView()
	s.ws.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleAdjustmentsUpdate(w http.ResponseWriter, r *http.Request) {
	var req adjustmentsBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	adj := pricing.AdjustmentSet{
		Installation:    req.Installation,
		Scaffolding:     req.Scaffolding,
		Commission:      req.Commission,
		TravelExpense:   req.TravelExpense,
		DiscountPercent: req.DiscountPercent,
	}
	if err := adj.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()

	s.ws.adj = adj
	s.ws.autoInstallation = req.AutoInstallation
	writeJSON(w, http.StatusOK, s.adjustmentsView())
}

type quoteResponse struct {
	ClientName string                `json:"clientName"`
	Quote      pricing.Quote         `json:"quote"`
	Lines      []pricing.VisibleLine `json:"lines"`
	RealCosts  decimal.Decimal       `json:"realCosts"`
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	s.ws.mu.Lock()
	q, items := s.ws.compute()
	client := s.ws.clientName
	s.ws.mu.Unlock()

	writeJSON(w, http.StatusOK, quoteResponse{
		ClientName: client,
		Quote:      q,
		Lines:      q.VisibleLines(items),
		RealCosts:  q.RealCosts(),
	})
}

type generateResponse struct {
	Summary history.Summary `json:"summary"`
	Quote   pricing.Quote   `json:"quote"`
}

// handleQuoteGenerate records the current quote in history and forwards it to the
// spreadsheet in the background. Notification problems never reach the response.
func (s *server) handleQuoteGenerate(w http.ResponseWriter, r *http.Request) {
	s.ws.mu.Lock()
	q, _ := s.ws.compute()
	client, margin := s.ws.clientName, s.ws.margin
	s.ws.mu.Unlock()

	now := s.now()
	summary := history.Project(q, client, margin, now)
	if err := s.history.Append(r.Context(), summary); err != nil {
		s.logger.Error("failed to save quote", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save quote")
		return
	}

	s.ws.mu.Lock()
	s.ws.lastNumber = summary.Number
	s.ws.mu.Unlock()

	s.metrics.QuoteGenerated(string(q.Policy))
	s.dispatcher.Dispatch(notify.FromQuote(q, client, margin, now))

	writeJSON(w, http.StatusCreated, generateResponse{Summary: summary, Quote: q})
}

func (s *server) quoteDocument() export.QuoteDocument {
	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()

	now := s.now()
	number := s.ws.lastNumber
	if number == "" {
		number = history.QuoteNumber(now)
	}
	q, items := s.ws.compute()
	return export.NewQuoteDocument(number, s.ws.clientName, s.ws.notes, now, items, q)
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	doc := s.quoteDocument()
	body, err := export.QuotePDF(doc)
	if err != nil {
		s.logger.Error("failed to render quote pdf", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render quote")
		return
	}
	writeAttachment(w, contentTypePDF, doc.Filename("pdf"), body)
}

func (s *server) handleQuoteExcel(w http.ResponseWriter, r *http.Request) {
	doc := s.quoteDocument()
	body, err := export.QuoteExcel(doc)
	if err != nil {
		s.logger.Error("failed to render quote xlsx", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render quote")
		return
	}
	writeAttachment(w, contentTypeXLSX, doc.Filename("xlsx"), body)
}

func (s *server) preQuote() export.PreQuote {
	s.ws.mu.Lock()
	defer s.ws.mu.Unlock()

	return export.PreQuote{
		ClientName:   s.ws.clientName,
		Date:         s.now(),
		Measurements: s.ws.sheet.All(),
	}
}

func (s *server) handlePreQuotePDF(w http.ResponseWriter, r *http.Request) {
	p := s.preQuote()
	body, err := export.PreQuotePDF(p)
	if err != nil {
		s.logger.Error("failed to render pre-quote pdf", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render pre-quote")
		return
	}
	writeAttachment(w, contentTypePDF, p.Filename("pdf"), body)
}

func (s *server) handlePreQuoteExcel(w http.ResponseWriter, r *http.Request) {
	p := s.preQuote()
	body, err := export.PreQuoteExcel(p)
	if err != nil {
		s.logger.Error("failed to render pre-quote xlsx", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render pre-quote")
		return
	}
	writeAttachment(w, contentTypeXLSX, p.Filename("xlsx"), body)
}

func (s *server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	all, err := s.history.LoadAll(r.Context())
	if err != nil {
		s.logger.Error("failed to load history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if all == nil {
		all = []history.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": all})
}

func (s *server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.logger.Error("failed to clear history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
