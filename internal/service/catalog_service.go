package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"crm-backend/internal/model"
	"crm-backend/internal/pricing"
	"crm-backend/internal/repository"
	"crm-backend/internal/spreadsheet"
	"crm-backend/internal/storage"
	"crm-backend/internal/websocket"

	"github.com/google/uuid"
)

// catalogBatchSize is the number of rows sent per upsert statement.
const catalogBatchSize = 500

// optionalCatalogColumns are dropped and the batch retried once when the
// remote schema rejects the full row shape.
var optionalCatalogColumns = []string{"type", "nuoc"}

// --- DTOs ---

type ImportCatalogResult struct {
	RowsRead       int      `json:"rows_read"`
	RowsImported   int      `json:"rows_imported"`
	Batches        int      `json:"batches"`
	OmittedColumns []string `json:"omitted_columns,omitempty"`
}

type CatalogFilter struct {
	Search string
	Page   int
	Limit  int
}

// --- Interface ---

type CatalogService interface {
	// ImportCatalog parses a price-list upload (.xlsx or .csv by file
	// extension) and upserts it into the catalog keyed on specs.
	ImportCatalog(ctx context.Context, filename string, r io.Reader) (ImportCatalogResult, error)
	ListCatalog(ctx context.Context, filter CatalogFilter) ([]model.CatalogItem, int64, error)
	UploadItemImage(ctx context.Context, id string, filename string, r io.Reader) (string, error)
	ClearCatalog(ctx context.Context) error
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
	blobs       storage.BlobStore
	hub         *websocket.Hub
}

func NewCatalogService(catalogRepo repository.CatalogRepository, blobs storage.BlobStore, hub *websocket.Hub) CatalogService {
	return &catalogService{catalogRepo: catalogRepo, blobs: blobs, hub: hub}
}

// --- Implementation ---

func (s *catalogService) ImportCatalog(ctx context.Context, filename string, r io.Reader) (ImportCatalogResult, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = spreadsheet.ReadCSV(r)
	case ".xlsx", ".xlsm":
		rows, err = spreadsheet.ReadWorkbook(r)
	default:
		return ImportCatalogResult{}, fmt.Errorf("unsupported file type %q: expected .xlsx or .csv", filepath.Ext(filename))
	}
	if err != nil {
		return ImportCatalogResult{}, fmt.Errorf("failed to parse upload: %w", err)
	}

	parsed := spreadsheet.ParseCatalogRows(rows)
	if len(parsed) == 0 {
		return ImportCatalogResult{}, fmt.Errorf("no importable rows found: every row needs a specs value")
	}

	items := make([]model.CatalogItem, 0, len(parsed))
	for _, p := range parsed {
		rmb := pricing.ParseAmount(p.BuyingPriceRMB)
		rate := pricing.ParseAmount(p.ExchangeRate)
		qty := pricing.ParseAmount(p.Qty)
		items = append(items, model.CatalogItem{
			No:       p.No,
			ItemCode: p.ItemCode,
			ItemName: p.ItemName,
			Specs:    p.Specs,
			Qty:      qty,

			BuyingPriceRMB:      rmb,
			TotalBuyingPriceRMB: rmb * qty,
			ExchangeRate:        rate,
			// The VND columns are always recomputed locally; whatever the
			// sheet carried is ignored.
			BuyingPriceVND:      rmb * rate,
			TotalBuyingPriceVND: rmb * rate * qty,

			Leadtime: p.Leadtime,
			Supplier: p.Supplier,
			Images:   p.Images,
			Type:     p.Type,
			NUOC:     p.NUOC,
		})
	}

	result := ImportCatalogResult{RowsRead: len(rows) - 1}
	for start := 0; start < len(items); start += catalogBatchSize {
		end := start + catalogBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		if err := s.catalogRepo.UpsertBatch(ctx, batch, result.OmittedColumns...); err != nil {
			// Older deployments lack the optional columns; retry the
			// batch without them, but only when the store actually
			// rejected one of those columns. Any other failure aborts.
			if len(result.OmittedColumns) > 0 || !isOptionalColumnError(err) {
				return ImportCatalogResult{}, fmt.Errorf("failed to import batch %d: %w", result.Batches+1, err)
			}
			result.OmittedColumns = optionalCatalogColumns
			if retryErr := s.catalogRepo.UpsertBatch(ctx, batch, result.OmittedColumns...); retryErr != nil {
				return ImportCatalogResult{}, fmt.Errorf("failed to import batch %d: %w", result.Batches+1, retryErr)
			}
		}
		result.Batches++
		result.RowsImported += len(batch)
	}

	if s.hub != nil {
		s.hub.Notify(websocket.EventCatalogImported, result)
	}
	return result, nil
}

// isOptionalColumnError reports whether the store rejected the row shape
// because one of the optional columns is missing from the remote schema,
// e.g. `column "nuoc" of relation "catalog_items" does not exist`.
func isOptionalColumnError(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, col := range optionalCatalogColumns {
		if strings.Contains(msg, `"`+col+`"`) {
			return true
		}
	}
	return false
}

func (s *catalogService) ListCatalog(ctx context.Context, filter CatalogFilter) ([]model.CatalogItem, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	items, total, err := s.catalogRepo.List(ctx, filter.Search, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	return items, total, nil
}

func (s *catalogService) UploadItemImage(ctx context.Context, id string, filename string, r io.Reader) (string, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid catalog item id: %w", err)
	}
	item, err := s.catalogRepo.FindByID(ctx, itemID)
	if err != nil {
		return "", fmt.Errorf("catalog item not found: %w", err)
	}

	folder, err := s.blobs.EnsureFolder(storage.FolderProductImages)
	if err != nil {
		return "", fmt.Errorf("failed to prepare image folder: %w", err)
	}
	ref, err := s.blobs.Upload(folder, itemID.String()+filepath.Ext(filename), r)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	if err := s.catalogRepo.UpdateImage(ctx, item.ID, ref); err != nil {
		return "", fmt.Errorf("failed to link image: %w", err)
	}
	return ref, nil
}

func (s *catalogService) ClearCatalog(ctx context.Context) error {
	if err := s.catalogRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}
	return nil
}
