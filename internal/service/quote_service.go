package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/pricing"
	"crm-backend/internal/repository"
	"crm-backend/internal/spreadsheet"
	"crm-backend/internal/storage"
	"crm-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// --- DTOs ---

type QuoteSessionResponse struct {
	SessionID string               `json:"session_id"`
	Customer  string               `json:"customer"`
	Params    pricing.GlobalParams `json:"params"`
	Lines     []LineView           `json:"lines"`
	Total     LineView             `json:"total"`
	Unmatched int                  `json:"unmatched"`
}

// LineView pairs a line's numeric state with display strings rendered at
// read time. Storage and recalculation stay numeric; only the response
// carries the formatted values.
type LineView struct {
	pricing.Line
	Display map[string]string `json:"display"`
}

// UpdateLineRequest patches the editable inputs of one line. Nil fields
// are left untouched; the engine recalculates everything downstream.
type UpdateLineRequest struct {
	Qty            *float64 `json:"qty"`
	BuyingPriceRMB *float64 `json:"buying_price_rmb"`
	ExchangeRate   *float64 `json:"exchange_rate"`
	APPrice        *float64 `json:"ap_price"`
	UnitPrice      *float64 `json:"unit_price"`

	EndUserFee     *float64 `json:"end_user_fee"`
	BuyerFee       *float64 `json:"buyer_fee"`
	ImportTax      *float64 `json:"import_tax"`
	VAT            *float64 `json:"vat"`
	Transportation *float64 `json:"transportation"`
	ManagementFee  *float64 `json:"management_fee"`
	Payback        *float64 `json:"payback"`
}

type ApplyFormulaRequest struct {
	// Target column the formula result lands in: unit_price (default)
	// or ap_price.
	Target  string `json:"target" binding:"omitempty,oneof=unit_price ap_price"`
	Formula string `json:"formula" binding:"required"`
}

type SaveQuoteResponse struct {
	QuoteID     string  `json:"quote_id"`
	QuoteNo     string  `json:"quote_no"`
	Customer    string  `json:"customer"`
	TotalProfit float64 `json:"total_profit"`
	BackupRef   string  `json:"backup_ref"`
}

// --- Interface ---

type QuoteService interface {
	// CreateSession parses an RFQ upload, matches it against the
	// catalog and opens an in-memory working session priced with the
	// default parameters.
	CreateSession(ctx context.Context, customer, filename string, r io.Reader) (QuoteSessionResponse, error)
	GetSession(sessionID string) (QuoteSessionResponse, error)
	UpdateLine(sessionID string, lineNo int, req UpdateLineRequest) (QuoteSessionResponse, error)
	DeleteLine(sessionID string, lineNo int) (QuoteSessionResponse, error)
	ApplyFormula(sessionID string, req ApplyFormulaRequest) (QuoteSessionResponse, error)
	ApplyParams(sessionID string, params pricing.GlobalParams) (QuoteSessionResponse, error)
	// SaveQuote freezes the session into a write-once history record
	// and archives the full workbook in the blob store.
	SaveQuote(ctx context.Context, sessionID string) (SaveQuoteResponse, error)
	// ExportQuote renders the customer-facing workbook without the
	// internal cost columns.
	ExportQuote(sessionID string) (*bytes.Buffer, string, error)
	// ExportSpecsPDF renders the line specs as a printable PDF.
	ExportSpecsPDF(sessionID string) (*bytes.Buffer, string, error)
	GetQuote(ctx context.Context, id string) (*model.Quote, error)
	ListQuotes(ctx context.Context, customer string, page, limit int) ([]model.Quote, int64, error)
}

type quoteSession struct {
	ID       uuid.UUID
	Customer string
	Params   pricing.GlobalParams
	Lines    []pricing.Line
	Created  time.Time
}

type quoteService struct {
	catalogRepo repository.CatalogRepository
	quoteRepo   repository.QuoteRepository
	txManager   repository.TransactionManager
	blobs       storage.BlobStore
	hub         *websocket.Hub

	mu       sync.RWMutex
	sessions map[uuid.UUID]*quoteSession
}

func NewQuoteService(
	catalogRepo repository.CatalogRepository,
	quoteRepo repository.QuoteRepository,
	txManager repository.TransactionManager,
	blobs storage.BlobStore,
	hub *websocket.Hub,
) QuoteService {
	return &quoteService{
		catalogRepo: catalogRepo,
		quoteRepo:   quoteRepo,
		txManager:   txManager,
		blobs:       blobs,
		hub:         hub,
		sessions:    make(map[uuid.UUID]*quoteSession),
	}
}

// --- Implementation ---

func (s *quoteService) CreateSession(ctx context.Context, customer, filename string, r io.Reader) (QuoteSessionResponse, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return QuoteSessionResponse{}, fmt.Errorf("customer name is required")
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = spreadsheet.ReadCSV(r)
	case ".xlsx", ".xlsm":
		rows, err = spreadsheet.ReadWorkbook(r)
	default:
		return QuoteSessionResponse{}, fmt.Errorf("unsupported file type %q: expected .xlsx or .csv", filepath.Ext(filename))
	}
	if err != nil {
		return QuoteSessionResponse{}, fmt.Errorf("failed to parse rfq: %w", err)
	}

	rfqRows := spreadsheet.ParseRFQRows(rows)
	if len(rfqRows) == 0 {
		return QuoteSessionResponse{}, fmt.Errorf("no rfq rows found: every row needs a specs value")
	}

	items, err := s.catalogRepo.FindAll(ctx)
	if err != nil {
		return QuoteSessionResponse{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog := make([]pricing.CatalogEntry, 0, len(items))
	for _, it := range items {
		catalog = append(catalog, pricing.CatalogEntry{
			ItemCode:       it.ItemCode,
			ItemName:       it.ItemName,
			Specs:          it.Specs,
			BuyingPriceRMB: it.BuyingPriceRMB,
			ExchangeRate:   it.ExchangeRate,
			Supplier:       it.Supplier,
			Leadtime:       it.Leadtime,
			ImageRef:       it.Images,
		})
	}

	// New sessions start with raw matched lines: cost columns stay zero
	// until the operator explicitly applies the global parameters. The
	// defaults are only stored as the session's parameter set.
	params := pricing.DefaultParams()
	lines := pricing.Recalculate(pricing.Match(rfqRows, catalog))

	sess := &quoteSession{
		ID:       uuid.New(),
		Customer: customer,
		Params:   params,
		Lines:    lines,
		Created:  time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return toSessionResponse(sess), nil
}

func (s *quoteService) GetSession(sessionID string) (QuoteSessionResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return QuoteSessionResponse{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return toSessionResponse(sess), nil
}

func (s *quoteService) UpdateLine(sessionID string, lineNo int, req UpdateLineRequest) (QuoteSessionResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return QuoteSessionResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range sess.Lines {
		if sess.Lines[i].No == lineNo {
			idx = i
			break
		}
	}
	if idx < 0 {
		return QuoteSessionResponse{}, fmt.Errorf("line %d not found", lineNo)
	}

	l := &sess.Lines[idx]
	setIf := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setIf(&l.Qty, req.Qty)
	setIf(&l.BuyingPriceRMB, req.BuyingPriceRMB)
	setIf(&l.ExchangeRate, req.ExchangeRate)
	setIf(&l.APPrice, req.APPrice)
	setIf(&l.UnitPrice, req.UnitPrice)
	setIf(&l.EndUserFee, req.EndUserFee)
	setIf(&l.BuyerFee, req.BuyerFee)
	setIf(&l.ImportTax, req.ImportTax)
	setIf(&l.VAT, req.VAT)
	setIf(&l.Transportation, req.Transportation)
	setIf(&l.ManagementFee, req.ManagementFee)
	setIf(&l.Payback, req.Payback)

	sess.Lines = pricing.Recalculate(sess.Lines)
	return toSessionResponse(sess), nil
}

func (s *quoteService) DeleteLine(sessionID string, lineNo int) (QuoteSessionResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return QuoteSessionResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := sess.Lines[:0]
	found := false
	for _, l := range sess.Lines {
		if l.No == lineNo {
			found = true
			continue
		}
		kept = append(kept, l)
	}
	if !found {
		return QuoteSessionResponse{}, fmt.Errorf("line %d not found", lineNo)
	}

	// Renumber so the grid stays contiguous.
	for i := range kept {
		kept[i].No = i + 1
	}
	sess.Lines = pricing.Recalculate(kept)
	return toSessionResponse(sess), nil
}

func (s *quoteService) ApplyFormula(sessionID string, req ApplyFormulaRequest) (QuoteSessionResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return QuoteSessionResponse{}, err
	}
	if strings.TrimSpace(req.Formula) == "" {
		return QuoteSessionResponse{}, fmt.Errorf("formula is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range sess.Lines {
		l := &sess.Lines[i]
		v := pricing.Evaluate(req.Formula, l.BuyingPriceVND, l.APPrice)
		if req.Target == "ap_price" {
			l.APPrice = v
		} else {
			l.UnitPrice = v
		}
	}
	sess.Lines = pricing.Recalculate(sess.Lines)
	return toSessionResponse(sess), nil
}

func (s *quoteService) ApplyParams(sessionID string, params pricing.GlobalParams) (QuoteSessionResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return QuoteSessionResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess.Params = params
	sess.Lines = pricing.ApplyGlobalParams(sess.Lines, params)
	return toSessionResponse(sess), nil
}

func (s *quoteService) SaveQuote(ctx context.Context, sessionID string) (SaveQuoteResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return SaveQuoteResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sess.Lines) == 0 {
		return SaveQuoteResponse{}, fmt.Errorf("nothing to save: session has no lines")
	}

	lines := pricing.Recalculate(sess.Lines)
	total := pricing.TotalRow(lines)

	configJSON, err := json.Marshal(sess.Params)
	if err != nil {
		return SaveQuoteResponse{}, fmt.Errorf("failed to serialize params: %w", err)
	}

	quoteNo, err := s.generateQuoteNo(ctx)
	if err != nil {
		return SaveQuoteResponse{}, fmt.Errorf("failed to generate quote number: %w", err)
	}

	// Archive the full workbook before touching the database; a failed
	// upload aborts the save.
	book, err := spreadsheet.WriteQuoteWorkbook(sess.Customer, lines, total)
	if err != nil {
		return SaveQuoteResponse{}, fmt.Errorf("failed to build backup workbook: %w", err)
	}
	now := time.Now()
	folder, err := s.blobs.EnsureFolder(
		storage.FolderQuotationHistory,
		sess.Customer,
		now.Format("2006"),
		strings.ToUpper(now.Format("Jan")),
	)
	if err != nil {
		return SaveQuoteResponse{}, fmt.Errorf("failed to prepare backup folder: %w", err)
	}
	backupRef, err := s.blobs.Upload(folder, quoteNo+".xlsx", book)
	if err != nil {
		return SaveQuoteResponse{}, fmt.Errorf("failed to archive backup: %w", err)
	}

	quote := model.Quote{
		QuoteNo:     quoteNo,
		Customer:    sess.Customer,
		QuoteDate:   now,
		TotalProfit: pricing.TotalProfit(lines),
		ConfigJSON:  string(configJSON),
		BackupRef:   backupRef,
	}
	for _, l := range lines {
		quote.Lines = append(quote.Lines, model.QuoteLine{
			No:       l.No,
			Warning:  l.Warning,
			ItemCode: l.ItemCode,
			ItemName: l.ItemName,
			Specs:    l.Specs,

			Qty:            l.Qty,
			BuyingPriceRMB: l.BuyingPriceRMB,
			ExchangeRate:   l.ExchangeRate,
			BuyingPriceVND: l.BuyingPriceVND,
			TotalBuyingVND: l.TotalBuyingVND,
			APPrice:        l.APPrice,
			APTotal:        l.APTotal,
			UnitPrice:      l.UnitPrice,
			TotalPrice:     l.TotalPrice,
			Gap:            l.Gap,

			EndUserFee:     l.EndUserFee,
			BuyerFee:       l.BuyerFee,
			ImportTax:      l.ImportTax,
			VAT:            l.VAT,
			Transportation: l.Transportation,
			ManagementFee:  l.ManagementFee,
			Payback:        l.Payback,

			Profit:    l.Profit,
			ProfitPct: l.ProfitPct,
			Status:    l.Status,

			Supplier: l.Supplier,
			Leadtime: l.Leadtime,
			ImageRef: l.ImageRef,
		})
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.quoteRepo.Create(txCtx, &quote); createErr != nil {
			return fmt.Errorf("failed to save quote: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return SaveQuoteResponse{}, err
	}

	sess.Lines = lines
	if s.hub != nil {
		s.hub.Notify(websocket.EventQuoteSaved, map[string]interface{}{
			"quote_no":     quote.QuoteNo,
			"customer":     quote.Customer,
			"total_profit": quote.TotalProfit,
		})
	}

	return SaveQuoteResponse{
		QuoteID:     quote.ID.String(),
		QuoteNo:     quote.QuoteNo,
		Customer:    quote.Customer,
		TotalProfit: quote.TotalProfit,
		BackupRef:   quote.BackupRef,
	}, nil
}

func (s *quoteService) ExportQuote(sessionID string) (*bytes.Buffer, string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	buf, err := spreadsheet.WriteQuoteExport(sess.Customer, sess.Lines)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build export: %w", err)
	}
	name := fmt.Sprintf("quotation_%s_%s.xlsx", storage.CleanSegment(sess.Customer), time.Now().Format("20060102"))
	return buf, name, nil
}

func (s *quoteService) ExportSpecsPDF(sessionID string) (*bytes.Buffer, string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Technical Specifications")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, "Customer: "+sess.Customer)
	pdf.Ln(6)
	pdf.Cell(0, 8, "Date: "+time.Now().Format("02-Jan-2006"))
	pdf.Ln(12)

	for _, l := range sess.Lines {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, fmt.Sprintf("%d. %s", l.No, l.ItemName))
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 10)
		if l.ItemCode != "" {
			pdf.Cell(0, 6, "Code: "+l.ItemCode)
			pdf.Ln(6)
		}
		pdf.MultiCell(0, 6, "Specs: "+l.Specs, "", "L", false)
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, "", fmt.Errorf("failed to render pdf: %w", err)
	}
	name := fmt.Sprintf("specs_%s_%s.pdf", storage.CleanSegment(sess.Customer), time.Now().Format("20060102"))
	return buf, name, nil
}

func (s *quoteService) GetQuote(ctx context.Context, id string) (*model.Quote, error) {
	quoteID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid quote id: %w", err)
	}
	quote, err := s.quoteRepo.FindByIDWithLines(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("quote not found: %w", err)
	}
	return quote, nil
}

func (s *quoteService) ListQuotes(ctx context.Context, customer string, page, limit int) ([]model.Quote, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	quotes, total, err := s.quoteRepo.List(ctx, customer, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	return quotes, total, nil
}

// --- Helpers ---

func (s *quoteService) session(id string) (*quoteSession, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	return sess, nil
}

func (s *quoteService) generateQuoteNo(ctx context.Context) (string, error) {
	today := time.Now().Format("20060102")
	prefix := "QUO-" + today + "-"

	count, err := s.quoteRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func toSessionResponse(sess *quoteSession) QuoteSessionResponse {
	unmatched := 0
	views := make([]LineView, 0, len(sess.Lines))
	for _, l := range sess.Lines {
		if l.Warning == pricing.WarningNoMatch {
			unmatched++
		}
		views = append(views, toLineView(l))
	}
	return QuoteSessionResponse{
		SessionID: sess.ID.String(),
		Customer:  sess.Customer,
		Params:    sess.Params,
		Lines:     views,
		Total:     toLineView(pricing.TotalRow(sess.Lines)),
		Unmatched: unmatched,
	}
}

func toLineView(l pricing.Line) LineView {
	return LineView{
		Line: l,
		Display: map[string]string{
			"buying_price_rmb": pricing.FormatAmount(l.BuyingPriceRMB),
			"buying_price_vnd": pricing.FormatAmount(l.BuyingPriceVND),
			"total_buying_rmb": pricing.FormatAmount(l.TotalBuyingRMB),
			"total_buying_vnd": pricing.FormatAmount(l.TotalBuyingVND),
			"ap_price":         pricing.FormatAmount(l.APPrice),
			"ap_total":         pricing.FormatAmount(l.APTotal),
			"unit_price":       pricing.FormatAmount(l.UnitPrice),
			"total_price":      pricing.FormatAmount(l.TotalPrice),
			"gap":              pricing.FormatAmount(l.Gap),
			"end_user_fee":     pricing.FormatAmount(l.EndUserFee),
			"buyer_fee":        pricing.FormatAmount(l.BuyerFee),
			"import_tax":       pricing.FormatAmount(l.ImportTax),
			"vat":              pricing.FormatAmount(l.VAT),
			"transportation":   pricing.FormatAmount(l.Transportation),
			"management_fee":   pricing.FormatAmount(l.ManagementFee),
			"payback":          pricing.FormatAmount(l.Payback),
			"profit":           pricing.FormatAmount(l.Profit),
			"profit_pct":       pricing.FormatPercent(l.ProfitPct),
		},
	}
}
