package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/internal/spreadsheet"
	"crm-backend/internal/storage"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateCustomerOrderRequest struct {
	CustomerName string `form:"customer_name" binding:"required"`
	TotalValue   string `form:"total_value" binding:"required"`
}

type CustomerOrderResponse struct {
	ID           string `json:"id"`
	PONumber     string `json:"po_number"`
	CustomerName string `json:"customer_name"`
	TotalValue   string `json:"total_value"`
	Status       string `json:"status"`
	FileRef      string `json:"file_ref"`
	FolderPath   string `json:"folder_path"`
	ProofRef     string `json:"proof_ref,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type SupplierSplitResult struct {
	Suppliers []SupplierSplitEntry `json:"suppliers"`
}

type SupplierSplitEntry struct {
	PONumber  string `json:"po_number"`
	Supplier  string `json:"supplier"`
	LineCount int    `json:"line_count"`
	FileRef   string `json:"file_ref"`
}

// --- Interface ---

type OrderService interface {
	// CreateCustomerOrder registers an incoming customer PO, archiving
	// the uploaded file under PO_KHACH_HANG/<year>/<customer>/<month>.
	CreateCustomerOrder(ctx context.Context, req CreateCustomerOrderRequest, filename string, file io.Reader) (CustomerOrderResponse, error)
	ListCustomerOrders(ctx context.Context, status string, page, limit int) ([]CustomerOrderResponse, int64, error)
	// SplitSupplierOrders breaks a master purchase sheet into one
	// workbook per supplier and archives each under PO_NCC.
	SplitSupplierOrders(ctx context.Context, filename string, file io.Reader) (SupplierSplitResult, error)
	ListSupplierOrders(ctx context.Context, supplier string, page, limit int) ([]model.SupplierOrder, int64, error)
}

type orderService struct {
	orderRepo    repository.CustomerOrderRepository
	supplierRepo repository.SupplierOrderRepository
	blobs        storage.BlobStore
}

func NewOrderService(
	orderRepo repository.CustomerOrderRepository,
	supplierRepo repository.SupplierOrderRepository,
	blobs storage.BlobStore,
) OrderService {
	return &orderService{orderRepo: orderRepo, supplierRepo: supplierRepo, blobs: blobs}
}

// --- Implementation ---

func (s *orderService) CreateCustomerOrder(ctx context.Context, req CreateCustomerOrderRequest, filename string, file io.Reader) (CustomerOrderResponse, error) {
	totalValue, err := decimal.NewFromString(strings.ReplaceAll(req.TotalValue, ",", ""))
	if err != nil {
		return CustomerOrderResponse{}, fmt.Errorf("invalid total_value: %w", err)
	}

	now := time.Now()
	poNumber := "POC-" + now.Format("20060102-150405")

	folder, err := s.blobs.EnsureFolder(
		storage.FolderCustomerPO,
		now.Format("2006"),
		req.CustomerName,
		strings.ToUpper(now.Format("Jan")),
	)
	if err != nil {
		return CustomerOrderResponse{}, fmt.Errorf("failed to prepare order folder: %w", err)
	}

	fileRef := ""
	if file != nil {
		fileRef, err = s.blobs.Upload(folder, poNumber+filepath.Ext(filename), file)
		if err != nil {
			return CustomerOrderResponse{}, fmt.Errorf("failed to archive order file: %w", err)
		}
	}

	order := model.CustomerOrder{
		PONumber:     poNumber,
		CustomerName: strings.TrimSpace(req.CustomerName),
		TotalValue:   totalValue,
		FileRef:      fileRef,
		FolderPath:   folder,
		Status:       model.OrderStatusReceived,
	}
	if err := s.orderRepo.Create(ctx, &order); err != nil {
		return CustomerOrderResponse{}, fmt.Errorf("failed to create order: %w", err)
	}

	return toCustomerOrderResponse(order), nil
}

func (s *orderService) ListCustomerOrders(ctx context.Context, status string, page, limit int) ([]CustomerOrderResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	orders, total, err := s.orderRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	result := make([]CustomerOrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, toCustomerOrderResponse(o))
	}
	return result, total, nil
}

func (s *orderService) SplitSupplierOrders(ctx context.Context, filename string, file io.Reader) (SupplierSplitResult, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = spreadsheet.ReadCSV(file)
	case ".xlsx", ".xlsm":
		rows, err = spreadsheet.ReadWorkbook(file)
	default:
		return SupplierSplitResult{}, fmt.Errorf("unsupported file type %q: expected .xlsx or .csv", filepath.Ext(filename))
	}
	if err != nil {
		return SupplierSplitResult{}, fmt.Errorf("failed to parse master sheet: %w", err)
	}
	if len(rows) < 2 {
		return SupplierSplitResult{}, fmt.Errorf("master sheet has no data rows")
	}

	header := rows[0]
	supplierCol := spreadsheet.FindColumn(header, "supplier")
	if supplierCol < 0 {
		supplierCol = spreadsheet.FindColumn(header, "ncc")
	}
	if supplierCol < 0 {
		return SupplierSplitResult{}, fmt.Errorf("master sheet has no supplier column")
	}

	// Group data rows per supplier, preserving sheet order within each
	// group and the order suppliers first appear in.
	groups := make(map[string][][]string)
	var supplierOrder []string
	for _, row := range rows[1:] {
		if supplierCol >= len(row) {
			continue
		}
		supplier := strings.TrimSpace(row[supplierCol])
		if supplier == "" {
			continue
		}
		if _, seen := groups[supplier]; !seen {
			supplierOrder = append(supplierOrder, supplier)
		}
		groups[supplier] = append(groups[supplier], row)
	}
	if len(groups) == 0 {
		return SupplierSplitResult{}, fmt.Errorf("master sheet has no rows with a supplier value")
	}

	now := time.Now()
	folder, err := s.blobs.EnsureFolder(storage.FolderSupplierPO, now.Format("2006"))
	if err != nil {
		return SupplierSplitResult{}, fmt.Errorf("failed to prepare supplier folder: %w", err)
	}

	var result SupplierSplitResult
	for i, supplier := range supplierOrder {
		group := groups[supplier]
		var book *bytes.Buffer
		book, err = spreadsheet.WriteRowsWorkbook(header, group)
		if err != nil {
			return SupplierSplitResult{}, fmt.Errorf("failed to build workbook for %s: %w", supplier, err)
		}

		poNumber := fmt.Sprintf("POS-%s-%02d", now.Format("20060102-150405"), i+1)
		fileRef, uploadErr := s.blobs.Upload(folder, poNumber+"_"+storage.CleanSegment(supplier)+".xlsx", book)
		if uploadErr != nil {
			return SupplierSplitResult{}, fmt.Errorf("failed to archive workbook for %s: %w", supplier, uploadErr)
		}

		order := model.SupplierOrder{
			PONumber:  poNumber,
			Supplier:  supplier,
			LineCount: len(group),
			FileRef:   fileRef,
		}
		if err := s.supplierRepo.Create(ctx, &order); err != nil {
			return SupplierSplitResult{}, fmt.Errorf("failed to record supplier order: %w", err)
		}

		result.Suppliers = append(result.Suppliers, SupplierSplitEntry{
			PONumber:  poNumber,
			Supplier:  supplier,
			LineCount: len(group),
			FileRef:   fileRef,
		})
	}

	return result, nil
}

func (s *orderService) ListSupplierOrders(ctx context.Context, supplier string, page, limit int) ([]model.SupplierOrder, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	orders, total, err := s.supplierRepo.List(ctx, supplier, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch supplier orders: %w", err)
	}
	return orders, total, nil
}

// --- Mapping ---

func toCustomerOrderResponse(o model.CustomerOrder) CustomerOrderResponse {
	return CustomerOrderResponse{
		ID:           o.ID.String(),
		PONumber:     o.PONumber,
		CustomerName: o.CustomerName,
		TotalValue:   o.TotalValue.StringFixed(2),
		Status:       o.Status,
		FileRef:      o.FileRef,
		FolderPath:   o.FolderPath,
		ProofRef:     o.ProofRef,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
	}
}
