package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nexuspos/internal/cache"
	"nexuspos/internal/domain"
	"nexuspos/internal/store"
	"nexuspos/internal/store/memory"
)

func newTestService() *Service {
	return New(memory.NewSeeded(), cache.NoopLookupCache{}, 5*time.Second)
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func cashierCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "kasir", Role: "cashier"})
}

func productByCode(t *testing.T, svc *Service, itemCode string) domain.Product {
	t.Helper()
	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	for _, p := range products {
		if p.ItemCode == itemCode {
			return p
		}
	}
	t.Fatalf("product %s not found", itemCode)
	return domain.Product{}
}

func money(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("bad money literal %q: %v", raw, err)
	}
	return value
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateProduct(cashierCtx(), domain.ProductSpec{
		ItemCode: "ITM-900001",
		Name:     "Test Gadget",
	})
	if !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired for cashier role, got %v", err)
	}
}

func TestCreateProductCoercesBadNumbers(t *testing.T) {
	svc := newTestService()

	result, err := svc.CreateProduct(adminCtx(), domain.ProductSpec{
		ItemCode:       "ITM-900002",
		Name:           "Budget Webcam",
		CostPrice:      "abc",
		WholesalePrice: "-5",
		SellingPrice:   "19.99",
		Qty:            "not-a-number",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if !result.Product.CostPrice.IsZero() {
		t.Fatalf("expected cost price coerced to zero, got %s", result.Product.CostPrice)
	}
	if !result.Product.WholesalePrice.IsZero() {
		t.Fatalf("expected wholesale price coerced to zero, got %s", result.Product.WholesalePrice)
	}
	if !result.Product.SellingPrice.Equal(money(t, "19.99")) {
		t.Fatalf("expected selling price 19.99, got %s", result.Product.SellingPrice)
	}
	if result.Product.Qty != 0 {
		t.Fatalf("expected qty coerced to zero, got %d", result.Product.Qty)
	}
	if len(result.CoercedFields) != 3 {
		t.Fatalf("expected 3 coerced fields, got %v", result.CoercedFields)
	}
}

func TestCreateProductDuplicateItemCode(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateProduct(adminCtx(), domain.ProductSpec{
		ItemCode: "ITM-100104",
		Name:     "Another Mouse",
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate item code, got %v", err)
	}
}

func TestCreateProductWithSerialsSyncsQty(t *testing.T) {
	svc := newTestService()

	result, err := svc.CreateProduct(adminCtx(), domain.ProductSpec{
		ItemCode:       "ITM-900003",
		Name:           "Gaming Console",
		WholesalePrice: "310.00",
		SellingPrice:   "379.00",
		Warranty:       "1 Year",
		TrackSerial:    true,
		Serials:        []string{"CON-SN-0001", "CON-SN-0002"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.Product.Qty != 2 {
		t.Fatalf("expected qty synced to serial count 2, got %d", result.Product.Qty)
	}
	if len(result.Product.StockItems) != 2 {
		t.Fatalf("expected 2 stock items, got %d", len(result.Product.StockItems))
	}
	if result.Product.WarrantyType != domain.WarrantyOneYear {
		t.Fatalf("expected 1Y warranty, got %s", result.Product.WarrantyType)
	}
}

func TestCreateProductUndoneWhenSerialTaken(t *testing.T) {
	svc := newTestService()

	// LPT-SN-0001 already belongs to the seeded laptop.
	_, err := svc.CreateProduct(adminCtx(), domain.ProductSpec{
		ItemCode:    "ITM-900004",
		Name:        "Refurb Laptop",
		TrackSerial: true,
		Serials:     []string{"LPT-SN-0001"},
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for taken serial, got %v", err)
	}

	// The half-created product must not survive.
	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	for _, p := range products {
		if p.ItemCode == "ITM-900004" {
			t.Fatalf("expected product create to be undone after serial conflict")
		}
	}
}

func TestUpdateProductRebuildsSerialLedger(t *testing.T) {
	svc := newTestService()
	laptop := productByCode(t, svc, "ITM-100101")

	oldIDs := make(map[string]bool, len(laptop.StockItems))
	for _, item := range laptop.StockItems {
		oldIDs[item.ID] = true
	}

	result, err := svc.UpdateProduct(adminCtx(), laptop.ID, domain.ProductSpec{
		ItemCode:       laptop.ItemCode,
		Name:           laptop.Name,
		WholesalePrice: "610.00",
		SellingPrice:   "699.00",
		Warranty:       "2 Years",
		TrackSerial:    true,
		Serials:        []string{"LPT-SN-0001", "LPT-SN-0002", "LPT-SN-0099"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if result.Product.Qty != 3 {
		t.Fatalf("expected qty 3 after rebuild, got %d", result.Product.Qty)
	}
	for _, item := range result.Product.StockItems {
		if oldIDs[item.ID] {
			t.Fatalf("expected fresh stock item identities, %s survived the rebuild", item.ID)
		}
		if item.Status != domain.StockAvailable {
			t.Fatalf("expected rebuilt ledger rows AVAILABLE, got %s", item.Status)
		}
	}

	// The dropped serial is gone.
	res, err := svc.Resolve(context.Background(), "LPT-SN-0003")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome == domain.ResolveExact {
		t.Fatalf("expected LPT-SN-0003 to disappear after replace")
	}
}

func TestUpdateProductTurningTrackingOffPurgesLedger(t *testing.T) {
	svc := newTestService()
	monitor := productByCode(t, svc, "ITM-100102")

	_, err := svc.UpdateProduct(adminCtx(), monitor.ID, domain.ProductSpec{
		ItemCode:       monitor.ItemCode,
		Name:           monitor.Name,
		WholesalePrice: "118.00",
		SellingPrice:   "139.00",
		Qty:            "5",
		TrackSerial:    false,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	res, err := svc.Resolve(context.Background(), "MON-SN-1001")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome == domain.ResolveExact {
		t.Fatalf("expected ledger purged when tracking turned off")
	}
}

func TestUpdateProductRestoredAfterSerialConflict(t *testing.T) {
	svc := newTestService()
	monitor := productByCode(t, svc, "ITM-100102")

	// PHN-SN-7001 belongs to the seeded phone, so the ledger rebuild fails.
	_, err := svc.UpdateProduct(adminCtx(), monitor.ID, domain.ProductSpec{
		ItemCode:       monitor.ItemCode,
		Name:           "Renamed Monitor",
		WholesalePrice: "118.00",
		SellingPrice:   "139.00",
		TrackSerial:    true,
		Serials:        []string{"MON-SN-1001", "PHN-SN-7001"},
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for taken serial, got %v", err)
	}

	// The pre-update row comes back, qty still in step with the ledger.
	after := productByCode(t, svc, "ITM-100102")
	if after.Name != monitor.Name {
		t.Fatalf("expected name restored to %q, got %q", monitor.Name, after.Name)
	}
	if after.Qty != monitor.Qty {
		t.Fatalf("expected qty restored to %d, got %d", monitor.Qty, after.Qty)
	}
	for _, serial := range []string{"MON-SN-1001", "MON-SN-1002"} {
		res, err := svc.Resolve(context.Background(), serial)
		if err != nil {
			t.Fatalf("resolve %s failed: %v", serial, err)
		}
		if res.Outcome != domain.ResolveExact || res.StockItem.Status != domain.StockAvailable {
			t.Fatalf("expected %s still available after failed update", serial)
		}
	}
}

func TestResolveExactSerial(t *testing.T) {
	svc := newTestService()

	res, err := svc.Resolve(context.Background(), "PHN-SN-7001")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome != domain.ResolveExact {
		t.Fatalf("expected exact outcome, got %s", res.Outcome)
	}
	if res.Product == nil || res.Product.ItemCode != "ITM-100103" {
		t.Fatalf("expected phone product attached to exact match")
	}
	if res.StockItem == nil || res.StockItem.Status != domain.StockAvailable {
		t.Fatalf("expected available stock item attached to exact match")
	}
}

func TestResolveFallsBackToCandidates(t *testing.T) {
	svc := newTestService()

	res, err := svc.Resolve(context.Background(), "laptop")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome != domain.ResolveCandidates {
		t.Fatalf("expected candidates outcome, got %s", res.Outcome)
	}
	if len(res.Candidates) != 1 || res.Candidates[0].ItemCode != "ITM-100101" {
		t.Fatalf("expected the seeded laptop as sole candidate, got %v", res.Candidates)
	}
}

func TestResolveNoneForUnknownToken(t *testing.T) {
	svc := newTestService()

	res, err := svc.Resolve(context.Background(), "zzz-does-not-exist")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome != domain.ResolveNone {
		t.Fatalf("expected none outcome, got %s", res.Outcome)
	}
}

// flakySerialRepo simulates a storage outage on the serial index while the
// rest of the repository keeps working.
type flakySerialRepo struct {
	store.Repository
}

func (flakySerialRepo) FindBySerial(context.Context, string) (*domain.StockItem, error) {
	return nil, fmt.Errorf("%w: serial index unavailable", store.ErrStorage)
}

func TestResolveDegradesToSearchWhenSerialLookupFails(t *testing.T) {
	svc := New(flakySerialRepo{memory.NewSeeded()}, cache.NoopLookupCache{}, 5*time.Second)

	// A serial token matches no product name, so the scan falls through to
	// an empty candidate set instead of failing.
	res, err := svc.Resolve(context.Background(), "LPT-SN-0001")
	if err != nil {
		t.Fatalf("expected resolve to degrade, got error: %v", err)
	}
	if res.Outcome != domain.ResolveNone {
		t.Fatalf("expected none outcome on degraded resolve, got %s", res.Outcome)
	}

	// A product-name token still finds candidates through the search path.
	res, err = svc.Resolve(context.Background(), "laptop")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome != domain.ResolveCandidates {
		t.Fatalf("expected candidates outcome, got %s", res.Outcome)
	}
}

func TestCommitInvoiceSellsSerialAndDecrementsQty(t *testing.T) {
	svc := newTestService()
	laptop := productByCode(t, svc, "ITM-100101")
	mouse := productByCode(t, svc, "ITM-100104")

	inv, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
		InvoiceNo:    "INV-202608-0001",
		CustomerName: "R. Perera",
		Date:         "2026-08-30",
	}, []domain.InvoiceLineSpec{
		{ProductID: laptop.ID, SerialNumber: "LPT-SN-0002", Qty: 1, UnitPrice: money(t, "699.00")},
		{ProductID: mouse.ID, Qty: 2, UnitPrice: money(t, "11.50")},
	}, "INVOICE")
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if !inv.TotalAmount.Equal(money(t, "722.00")) {
		t.Fatalf("expected total 722.00, got %s", inv.TotalAmount)
	}
	if len(inv.Items) != 2 || inv.Items[0].SerialNumber != "LPT-SN-0002" {
		t.Fatalf("expected line order preserved, got %v", inv.Items)
	}
	if inv.Items[0].Warranty != domain.WarrantyTwoYears {
		t.Fatalf("expected laptop line to inherit 2Y warranty, got %s", inv.Items[0].Warranty)
	}

	// Stock effects applied.
	if _, err := svc.Resolve(context.Background(), "LPT-SN-0002"); !errors.Is(err, store.ErrAlreadySold) {
		t.Fatalf("expected LPT-SN-0002 to resolve as already sold, got %v", err)
	}
	if got := productByCode(t, svc, "ITM-100101").Qty; got != 2 {
		t.Fatalf("expected laptop qty 2 after sale, got %d", got)
	}
	if got := productByCode(t, svc, "ITM-100104").Qty; got != 23 {
		t.Fatalf("expected mouse qty 23 after sale, got %d", got)
	}
}

func TestQuotationLeavesStockUntouched(t *testing.T) {
	svc := newTestService()
	laptop := productByCode(t, svc, "ITM-100101")

	_, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
		InvoiceNo:    "QUO-202608-0001",
		CustomerName: "S. Fernando",
	}, []domain.InvoiceLineSpec{
		{ProductID: laptop.ID, SerialNumber: "LPT-SN-0001", Qty: 1, UnitPrice: money(t, "699.00")},
	}, "QUOTATION")
	if err != nil {
		t.Fatalf("quotation commit failed: %v", err)
	}

	res, err := svc.Resolve(context.Background(), "LPT-SN-0001")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome != domain.ResolveExact || res.StockItem.Status != domain.StockAvailable {
		t.Fatalf("expected serial still available after quotation")
	}
	if got := productByCode(t, svc, "ITM-100101").Qty; got != 3 {
		t.Fatalf("expected laptop qty unchanged at 3, got %d", got)
	}
}

func TestCommitRejectsPriceBelowWholesale(t *testing.T) {
	svc := newTestService()
	mouse := productByCode(t, svc, "ITM-100104")

	_, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
		InvoiceNo:    "INV-202608-0002",
		CustomerName: "Walk-in",
	}, []domain.InvoiceLineSpec{
		// One cent below wholesale 8.00.
		{ProductID: mouse.ID, Qty: 1, UnitPrice: money(t, "7.99")},
	}, "INVOICE")
	if !errors.Is(err, store.ErrPriceFloor) {
		t.Fatalf("expected price floor rejection, got %v", err)
	}

	// Selling exactly at wholesale is allowed.
	_, err = svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
		InvoiceNo:    "INV-202608-0003",
		CustomerName: "Walk-in",
	}, []domain.InvoiceLineSpec{
		{ProductID: mouse.ID, Qty: 1, UnitPrice: money(t, "8.00")},
	}, "INVOICE")
	if err != nil {
		t.Fatalf("expected sale at wholesale to pass, got %v", err)
	}
}

func TestCommitDuplicateInvoiceNo(t *testing.T) {
	svc := newTestService()
	mouse := productByCode(t, svc, "ITM-100104")
	lines := []domain.InvoiceLineSpec{
		{ProductID: mouse.ID, Qty: 1, UnitPrice: money(t, "11.50")},
	}

	if _, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{InvoiceNo: "INV-DUP-01", CustomerName: "A"}, lines, "INVOICE"); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	_, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{InvoiceNo: "INV-DUP-01", CustomerName: "B"}, lines, "INVOICE")
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for duplicate invoice number, got %v", err)
	}
}

func TestCommitSerializedLineRequiresSerialAndSingleQty(t *testing.T) {
	svc := newTestService()
	laptop := productByCode(t, svc, "ITM-100101")

	_, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
		InvoiceNo:    "INV-202608-0004",
		CustomerName: "Walk-in",
	}, []domain.InvoiceLineSpec{
		{ProductID: laptop.ID, Qty: 1, UnitPrice: money(t, "699.00")},
	}, "INVOICE")
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for missing serial, got %v", err)
	}

	_, err = svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
		InvoiceNo:    "INV-202608-0005",
		CustomerName: "Walk-in",
	}, []domain.InvoiceLineSpec{
		{ProductID: laptop.ID, SerialNumber: "LPT-SN-0001", Qty: 2, UnitPrice: money(t, "699.00")},
	}, "INVOICE")
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for qty > 1 on serialized line, got %v", err)
	}
}

func TestCommitRejectsBadModeAndDate(t *testing.T) {
	svc := newTestService()
	mouse := productByCode(t, svc, "ITM-100104")
	lines := []domain.InvoiceLineSpec{
		{ProductID: mouse.ID, Qty: 1, UnitPrice: money(t, "11.50")},
	}

	_, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{InvoiceNo: "INV-X", CustomerName: "A"}, lines, "RECEIPT")
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for unknown mode, got %v", err)
	}

	_, err = svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{InvoiceNo: "INV-X", CustomerName: "A", Date: "30/08/2026"}, lines, "INVOICE")
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for malformed date, got %v", err)
	}
}

func TestConcurrentCommitSameSerialSellsOnce(t *testing.T) {
	svc := newTestService()
	phone := productByCode(t, svc, "ITM-100103")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
				InvoiceNo:    fmt.Sprintf("INV-RACE-%d", i),
				CustomerName: "Racer",
			}, []domain.InvoiceLineSpec{
				{ProductID: phone.ID, SerialNumber: "PHN-SN-7002", Qty: 1, UnitPrice: money(t, "259.00")},
			}, "INVOICE")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, store.ErrAlreadySold) {
			t.Fatalf("loser should fail with already sold, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one commit to win, got %d", succeeded)
	}
	if got := productByCode(t, svc, "ITM-100103").Qty; got != 3 {
		t.Fatalf("expected phone qty decremented once to 3, got %d", got)
	}
}

func TestCommitRejectsSameSerialOnTwoLines(t *testing.T) {
	svc := newTestService()
	phone := productByCode(t, svc, "ITM-100103")

	_, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
		InvoiceNo:    "INV-202608-0006",
		CustomerName: "Walk-in",
	}, []domain.InvoiceLineSpec{
		{ProductID: phone.ID, SerialNumber: "PHN-SN-7001", Qty: 1, UnitPrice: money(t, "259.00")},
		{ProductID: phone.ID, SerialNumber: "PHN-SN-7001", Qty: 1, UnitPrice: money(t, "259.00")},
	}, "INVOICE")
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for repeated serial, got %v", err)
	}

	// Nothing sold: the unit is still available and qty matches the ledger.
	res, err := svc.Resolve(context.Background(), "PHN-SN-7001")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome != domain.ResolveExact || res.StockItem.Status != domain.StockAvailable {
		t.Fatalf("expected PHN-SN-7001 still available after rejection")
	}
	after := productByCode(t, svc, "ITM-100103")
	available := 0
	for _, item := range after.StockItems {
		if item.Status == domain.StockAvailable {
			available++
		}
	}
	if after.Qty != 4 || after.Qty != available {
		t.Fatalf("expected qty 4 matching available units, got qty=%d available=%d", after.Qty, available)
	}
}

func TestHistoryOrderAndFilter(t *testing.T) {
	svc := newTestService()
	mouse := productByCode(t, svc, "ITM-100104")
	lines := []domain.InvoiceLineSpec{
		{ProductID: mouse.ID, Qty: 1, UnitPrice: money(t, "11.50")},
	}

	commits := []struct {
		no, customer, date, mode string
	}{
		{"INV-H-01", "Alice Stores", "2026-08-01", "INVOICE"},
		{"QUO-H-01", "Bob Traders", "2026-08-15", "QUOTATION"},
		{"INV-H-02", "Alice Stores", "2026-08-20", "INVOICE"},
	}
	for _, c := range commits {
		if _, err := svc.CommitInvoice(cashierCtx(), domain.InvoiceSpec{
			InvoiceNo: c.no, CustomerName: c.customer, Date: c.date,
		}, lines, c.mode); err != nil {
			t.Fatalf("commit %s failed: %v", c.no, err)
		}
	}

	all, err := svc.ListHistory(context.Background(), domain.HistoryFilter{})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(all))
	}
	if all[0].InvoiceNo != "INV-H-02" || all[2].InvoiceNo != "INV-H-01" {
		t.Fatalf("expected newest-first ordering, got %s..%s", all[0].InvoiceNo, all[2].InvoiceNo)
	}

	invoicesOnly, err := svc.ListHistory(context.Background(), domain.HistoryFilter{Type: "invoice"})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(invoicesOnly) != 2 {
		t.Fatalf("expected 2 invoices, got %d", len(invoicesOnly))
	}

	byCustomer, err := svc.ListHistory(context.Background(), domain.HistoryFilter{Term: "bob"})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(byCustomer) != 1 || byCustomer[0].InvoiceNo != "QUO-H-01" {
		t.Fatalf("expected the quotation by customer search, got %v", byCustomer)
	}

	if _, err := svc.ListHistory(context.Background(), domain.HistoryFilter{Type: "RECEIPT"}); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error for unknown history type, got %v", err)
	}
}

func TestDeleteProductCascadesToStock(t *testing.T) {
	svc := newTestService()
	monitor := productByCode(t, svc, "ITM-100102")

	if err := svc.DeleteProduct(adminCtx(), monitor.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	res, err := svc.Resolve(context.Background(), "MON-SN-1001")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Outcome == domain.ResolveExact {
		t.Fatalf("expected monitor serials gone after cascade delete")
	}
}

func TestUpsertSupplierIsCaseSensitive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.UpsertSupplier(ctx, "Acme Traders", "011-555-0100")
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	same, err := svc.UpsertSupplier(ctx, "Acme Traders", "")
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if same.ID != first.ID {
		t.Fatalf("expected same supplier on exact name match")
	}

	other, err := svc.UpsertSupplier(ctx, "acme traders", "")
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("expected case-sensitive match to create a distinct supplier")
	}
}

func TestSearchDegradesEmptyOnBlankTerm(t *testing.T) {
	svc := newTestService()

	products, err := svc.SearchProducts(context.Background(), "   ")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty result for blank term, got %d", len(products))
	}
}
