package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"crm-backend/internal/storage"
)

func newTestCatalogService(t *testing.T, repo *stubCatalogRepo) CatalogService {
	t.Helper()
	blobs, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}
	return NewCatalogService(repo, blobs, nil)
}

const catalogCSVHeader = "No,Item code,Item name,Specs,Q'ty,Buying price (RMB),Total buying price (RMB),Exchange rate,Buying price (VND),Total buying price (VND),Leadtime,Supplier,Images,Type,N/U/O/C"

func TestImportCatalogRecomputesVND(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc := newTestCatalogService(t, repo)

	// The sheet claims a wildly wrong VND price; the import must ignore
	// it and recompute from RMB * rate.
	csv := catalogCSVHeader + "\n" +
		`1,PMP-01,Slurry pump,DN80 cast iron,2,"1,000",,3500,999,,4 weeks,Hebei Pumps,,Pump,N` + "\n"

	result, err := svc.ImportCatalog(context.Background(), "prices.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}
	if result.RowsImported != 1 || result.Batches != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	item := repo.upserted[0][0]
	if item.BuyingPriceRMB != 1000 {
		t.Errorf("expected RMB 1000, got %v", item.BuyingPriceRMB)
	}
	if item.BuyingPriceVND != 3500000 {
		t.Errorf("expected VND 3500000, got %v", item.BuyingPriceVND)
	}
	if item.TotalBuyingPriceVND != 7000000 {
		t.Errorf("expected total VND 7000000, got %v", item.TotalBuyingPriceVND)
	}
}

func TestImportCatalogBatches(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc := newTestCatalogService(t, repo)

	var b strings.Builder
	b.WriteString(catalogCSVHeader + "\n")
	for i := 0; i < 600; i++ {
		fmt.Fprintf(&b, "%d,C-%d,Item %d,SPEC-%04d,1,10,,3500,,,2 weeks,ACME,,,N\n", i+1, i, i, i)
	}

	result, err := svc.ImportCatalog(context.Background(), "prices.csv", strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}
	if result.Batches != 2 {
		t.Errorf("expected 2 batches, got %d", result.Batches)
	}
	if result.RowsImported != 600 {
		t.Errorf("expected 600 rows imported, got %d", result.RowsImported)
	}
	if len(repo.upserted[0]) != 500 || len(repo.upserted[1]) != 100 {
		t.Errorf("unexpected batch sizes: %d, %d", len(repo.upserted[0]), len(repo.upserted[1]))
	}
}

func TestImportCatalogSchemaDriftRetry(t *testing.T) {
	repo := &stubCatalogRepo{failBatch: 1}
	svc := newTestCatalogService(t, repo)

	csv := catalogCSVHeader + "\n" +
		"1,PMP-01,Slurry pump,DN80 cast iron,1,100,,3500,,,4 weeks,Hebei Pumps,,Pump,N\n"

	result, err := svc.ImportCatalog(context.Background(), "prices.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}
	if len(result.OmittedColumns) != 2 {
		t.Fatalf("expected omitted columns on retry, got %v", result.OmittedColumns)
	}
	if len(repo.omitted) != 1 || len(repo.omitted[0]) != 2 {
		t.Errorf("retry batch should omit optional columns: %v", repo.omitted)
	}
}

func TestImportCatalogNoRetryOnUnrelatedError(t *testing.T) {
	repo := &stubCatalogRepo{failBatch: 1, failErr: fmt.Errorf("driver: bad connection")}
	svc := newTestCatalogService(t, repo)

	csv := catalogCSVHeader + "\n" +
		"1,PMP-01,Slurry pump,DN80 cast iron,1,100,,3500,,,4 weeks,Hebei Pumps,,Pump,N\n"

	_, err := svc.ImportCatalog(context.Background(), "prices.csv", strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected import to fail on a non-schema error")
	}
	// The optional columns must not be dropped for a transient failure.
	if len(repo.omitted) != 0 {
		t.Errorf("batch retried with omitted columns %v, want no retry", repo.omitted)
	}
	if len(repo.upserted) != 0 {
		t.Errorf("batch persisted despite the failure: %d batches", len(repo.upserted))
	}
}

func TestImportCatalogRejectsUnknownExtension(t *testing.T) {
	svc := newTestCatalogService(t, &stubCatalogRepo{})

	if _, err := svc.ImportCatalog(context.Background(), "prices.pdf", strings.NewReader("x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestImportCatalogRejectsEmptySheet(t *testing.T) {
	svc := newTestCatalogService(t, &stubCatalogRepo{})

	csv := catalogCSVHeader + "\n"
	if _, err := svc.ImportCatalog(context.Background(), "prices.csv", strings.NewReader(csv)); err == nil {
		t.Error("expected error for a sheet with no data rows")
	}
}
