package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"nexuspos/internal/cache"
	"nexuspos/internal/domain"
	"nexuspos/internal/store"
	"nexuspos/internal/xid"
)

// lookupResultCap bounds candidate sets for short search tokens. A scan of
// "1" should not drag the whole catalog across the boundary.
const lookupResultCap = 200

// ErrAdminRequired marks a catalog mutation attempted without the admin role.
var ErrAdminRequired = errors.New("admin role required")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo        store.Repository
	lookupCache cache.LookupCache
	cacheTTL    time.Duration
}

func New(repo store.Repository, lookupCache cache.LookupCache, cacheTTL time.Duration) *Service {
	if lookupCache == nil {
		lookupCache = cache.NoopLookupCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Second
	}

	return &Service{
		repo:        repo,
		lookupCache: lookupCache,
		cacheTTL:    cacheTTL,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Product{}, fmt.Errorf("%w: product id required", store.ErrValidation)
	}
	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// UpsertSupplier finds a supplier by exact, case-sensitive name or creates
// it. Suppliers come into existence lazily the first time a product form
// references them.
func (s *Service) UpsertSupplier(ctx context.Context, name string, phone string) (domain.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Supplier{}, fmt.Errorf("%w: supplier name required", store.ErrValidation)
	}
	supplier, err := s.repo.UpsertSupplier(ctx, name, strings.TrimSpace(phone))
	if err != nil {
		return domain.Supplier{}, err
	}
	return *supplier, nil
}

func (s *Service) CreateProduct(ctx context.Context, spec domain.ProductSpec) (domain.ProductSaveResult, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.ProductSaveResult{}, ErrAdminRequired
	}

	product, coerced, err := s.productFromSpec(ctx, spec)
	if err != nil {
		return domain.ProductSaveResult{}, err
	}
	product.ID = xid.New("prod")
	product.CreatedAt = time.Now().UTC()

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.ProductSaveResult{}, err
	}

	if product.TrackSerial {
		if _, err := s.repo.ReplaceSerials(ctx, created.ID, spec.Serials); err != nil {
			// The product row exists but its ledger could not be written;
			// undo the create so the caller can retry with different serials.
			if delErr := s.repo.DeleteProduct(ctx, created.ID); delErr != nil {
				log.Printf("[service] WARN: failed to undo product %s after serial conflict: %v", created.ID, delErr)
			}
			return domain.ProductSaveResult{}, err
		}
	}

	saved, err := s.repo.GetProduct(ctx, created.ID)
	if err != nil {
		return domain.ProductSaveResult{}, err
	}

	s.reportCoercions("create", saved.ItemCode, coerced)
	return domain.ProductSaveResult{Product: *saved, CoercedFields: coerced}, nil
}

func (s *Service) UpdateProduct(ctx context.Context, productID string, spec domain.ProductSpec) (domain.ProductSaveResult, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.ProductSaveResult{}, ErrAdminRequired
	}

	existing, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return domain.ProductSaveResult{}, err
	}

	product, coerced, err := s.productFromSpec(ctx, spec)
	if err != nil {
		return domain.ProductSaveResult{}, err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt

	if _, err := s.repo.UpdateProduct(ctx, product); err != nil {
		return domain.ProductSaveResult{}, err
	}

	// The ledger is rebuilt on every save of a serialized product: edit one
	// serial of five and all five rows are recreated with fresh identities.
	// Turning tracking off purges the ledger the same way.
	if product.TrackSerial {
		if _, err := s.repo.ReplaceSerials(ctx, product.ID, spec.Serials); err != nil {
			s.restoreProduct(ctx, *existing)
			return domain.ProductSaveResult{}, err
		}
	} else if existing.TrackSerial {
		if _, err := s.repo.ReplaceSerials(ctx, product.ID, nil); err != nil {
			s.restoreProduct(ctx, *existing)
			return domain.ProductSaveResult{}, err
		}
	}

	saved, err := s.repo.GetProduct(ctx, product.ID)
	if err != nil {
		return domain.ProductSaveResult{}, err
	}

	s.reportCoercions("update", saved.ItemCode, coerced)
	return domain.ProductSaveResult{Product: *saved, CoercedFields: coerced}, nil
}

// restoreProduct puts the pre-update row back after a failed serial rebuild so
// the catalog qty stays in step with the untouched ledger.
func (s *Service) restoreProduct(ctx context.Context, prior domain.Product) {
	if _, err := s.repo.UpdateProduct(ctx, prior); err != nil {
		log.Printf("[service] WARN: failed to restore product %s after serial conflict: %v", prior.ID, err)
	}
}

func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return ErrAdminRequired
	}
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id required", store.ErrValidation)
	}
	return s.repo.DeleteProduct(ctx, productID)
}

// Resolve maps a scanned or typed token to a single serialized unit or a
// bounded set of candidate products. Read-only: a resolved unit is only
// reserved at commit time, never here.
func (s *Service) Resolve(ctx context.Context, token string) (domain.ResolveResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ResolveResult{Outcome: domain.ResolveNone}, nil
	}

	// Lookup is advisory, so storage failures on the serial path degrade to
	// candidate search instead of failing the scan. Only a genuinely SOLD
	// unit stops the operator here.
	item, err := s.repo.FindBySerial(ctx, token)
	switch {
	case err == nil:
		if item.Status == domain.StockSold {
			return domain.ResolveResult{}, fmt.Errorf("%w: %s", store.ErrAlreadySold, token)
		}
		product, err := s.repo.GetProduct(ctx, item.ProductID)
		if err == nil {
			return domain.ResolveResult{
				Outcome:   domain.ResolveExact,
				StockItem: item,
				Product:   product,
			}, nil
		}
		log.Printf("[service] WARN: resolve %q degraded to search, product load failed: %v", token, err)
	case !errors.Is(err, store.ErrNotFound):
		log.Printf("[service] WARN: resolve %q degraded to search, serial lookup failed: %v", token, err)
	}

	candidates := s.searchCandidates(ctx, token)
	if len(candidates) == 0 {
		return domain.ResolveResult{Outcome: domain.ResolveNone}, nil
	}
	return domain.ResolveResult{Outcome: domain.ResolveCandidates, Candidates: candidates}, nil
}

// SearchProducts is the broader text search backing manual lookup. Search is
// advisory, so storage failures degrade to an empty result instead of
// failing the caller.
func (s *Service) SearchProducts(ctx context.Context, term string) ([]domain.Product, error) {
	return s.searchCandidates(ctx, term), nil
}

func (s *Service) searchCandidates(ctx context.Context, term string) []domain.Product {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Product{}
	}

	key := strings.ToLower(term)
	if cached, hit, err := s.lookupCache.Get(ctx, key); err == nil && hit {
		return cached
	} else if err != nil {
		log.Printf("[service] WARN: lookup cache get failed: %v", err)
	}

	products, err := s.repo.SearchProducts(ctx, term, lookupResultCap)
	if err != nil {
		log.Printf("[service] WARN: product search %q degraded to empty result: %v", term, err)
		return []domain.Product{}
	}

	if err := s.lookupCache.Set(ctx, key, products, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: lookup cache set failed: %v", err)
	}
	return products
}

// CommitInvoice executes a sale or quotation as one atomic unit: header and
// ordered lines always; serial transitions and stock decrements only for
// real invoices. Any failure leaves no visible effect.
func (s *Service) CommitInvoice(ctx context.Context, spec domain.InvoiceSpec, lines []domain.InvoiceLineSpec, mode string) (domain.Invoice, error) {
	mode = strings.ToUpper(strings.TrimSpace(mode))
	if mode != domain.DocInvoice && mode != domain.DocQuotation {
		return domain.Invoice{}, fmt.Errorf("%w: mode must be INVOICE or QUOTATION", store.ErrValidation)
	}
	if len(lines) == 0 {
		return domain.Invoice{}, fmt.Errorf("%w: cart is empty", store.ErrValidation)
	}
	spec.InvoiceNo = strings.TrimSpace(spec.InvoiceNo)
	spec.CustomerName = strings.TrimSpace(spec.CustomerName)
	if spec.InvoiceNo == "" {
		return domain.Invoice{}, fmt.Errorf("%w: invoice number required", store.ErrValidation)
	}
	if spec.CustomerName == "" {
		return domain.Invoice{}, fmt.Errorf("%w: customer name required", store.ErrValidation)
	}

	docDate := strings.TrimSpace(spec.Date)
	if docDate == "" {
		docDate = time.Now().UTC().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", docDate); err != nil {
		return domain.Invoice{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", store.ErrValidation, spec.Date)
	}

	items := make([]domain.InvoiceItem, 0, len(lines))
	computedTotal := decimal.Zero
	soldSerials := make(map[string]struct{}, len(lines))
	for i, line := range lines {
		if line.Qty < 1 {
			return domain.Invoice{}, fmt.Errorf("%w: line %d qty must be at least 1", store.ErrValidation, i+1)
		}
		if line.UnitPrice.IsNegative() {
			return domain.Invoice{}, fmt.Errorf("%w: line %d unit price is negative", store.ErrValidation, i+1)
		}

		product, err := s.repo.GetProduct(ctx, line.ProductID)
		if err != nil {
			return domain.Invoice{}, err
		}

		serial := strings.TrimSpace(line.SerialNumber)
		if product.TrackSerial {
			if serial == "" {
				return domain.Invoice{}, fmt.Errorf("%w: line %d requires a serial number for %s", store.ErrValidation, i+1, product.ItemCode)
			}
			if line.Qty != 1 {
				return domain.Invoice{}, fmt.Errorf("%w: line %d sells a serialized unit, qty must be 1", store.ErrValidation, i+1)
			}
			// Each physical unit sells once per document, so a serial may
			// appear on at most one line.
			if _, dup := soldSerials[serial]; dup {
				return domain.Invoice{}, fmt.Errorf("%w: serial %s appears on more than one line", store.ErrConflict, serial)
			}
			soldSerials[serial] = struct{}{}
			item, err := s.repo.FindBySerial(ctx, serial)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return domain.Invoice{}, fmt.Errorf("%w: line %d serial %s does not exist", store.ErrValidation, i+1, serial)
				}
				return domain.Invoice{}, err
			}
			if item.Status == domain.StockSold {
				return domain.Invoice{}, fmt.Errorf("%w: %s", store.ErrAlreadySold, serial)
			}
			if item.ProductID != product.ID {
				return domain.Invoice{}, fmt.Errorf("%w: line %d serial %s belongs to a different product", store.ErrValidation, i+1, serial)
			}
		}

		// Business rule, not UI courtesy: no line sells below wholesale.
		if line.UnitPrice.LessThan(product.WholesalePrice) {
			return domain.Invoice{}, fmt.Errorf("%w: line %d price %s is below wholesale %s",
				store.ErrPriceFloor, i+1, line.UnitPrice.StringFixed(2), product.WholesalePrice.StringFixed(2))
		}

		warranty := product.WarrantyType
		if strings.TrimSpace(line.Warranty) != "" {
			warranty = domain.ParseWarranty(line.Warranty)
		}

		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty)))
		computedTotal = computedTotal.Add(lineTotal)
		items = append(items, domain.InvoiceItem{
			ProductID:    product.ID,
			ItemCode:     product.ItemCode,
			Description:  product.Name,
			SerialNumber: serial,
			Warranty:     warranty,
			Qty:          line.Qty,
			UnitPrice:    line.UnitPrice,
			Total:        lineTotal,
		})
	}

	// The caller's total is accepted but never trusted: the stored amount is
	// always the recomputed line sum, with any discrepancy reported.
	if raw := strings.TrimSpace(spec.TotalAmount); raw != "" {
		if callerTotal, err := decimal.NewFromString(raw); err != nil || !callerTotal.Equal(computedTotal) {
			log.Printf("[service] WARN: invoice %s caller total %q differs from line sum %s", spec.InvoiceNo, raw, computedTotal.StringFixed(2))
		}
	}

	inv := domain.Invoice{
		ID:           xid.New("inv"),
		InvoiceNo:    spec.InvoiceNo,
		CustomerName: spec.CustomerName,
		Date:         docDate,
		TotalAmount:  computedTotal,
		Type:         mode,
		CreatedAt:    time.Now().UTC(),
		Items:        items,
	}

	created, err := s.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return domain.Invoice{}, err
	}

	log.Printf("[service] committed %s %s customer=%s lines=%d total=%s",
		created.Type, created.InvoiceNo, created.CustomerName, len(created.Items), created.TotalAmount.StringFixed(2))
	return *created, nil
}

func (s *Service) ListHistory(ctx context.Context, filter domain.HistoryFilter) ([]domain.Invoice, error) {
	filter.Type = strings.ToUpper(strings.TrimSpace(filter.Type))
	if filter.Type != "" && filter.Type != domain.DocInvoice && filter.Type != domain.DocQuotation {
		return nil, fmt.Errorf("%w: history type %q", store.ErrValidation, filter.Type)
	}
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.ListInvoices(ctx, filter)
}

// productFromSpec converts the caller form to a catalog record, resolving
// the supplier by name and applying the numeric leniency policy: unparsable
// price/qty text coerces to zero and is reported, never rejected.
func (s *Service) productFromSpec(ctx context.Context, spec domain.ProductSpec) (domain.Product, []string, error) {
	itemCode := strings.TrimSpace(spec.ItemCode)
	name := strings.TrimSpace(spec.Name)
	if itemCode == "" || name == "" {
		return domain.Product{}, nil, fmt.Errorf("%w: item code and name required", store.ErrValidation)
	}

	coerced := make([]string, 0, 4)
	cost, ok := parsePrice(spec.CostPrice)
	if !ok {
		coerced = append(coerced, "cost_price")
	}
	wholesale, ok := parsePrice(spec.WholesalePrice)
	if !ok {
		coerced = append(coerced, "wholesale_price")
	}
	selling, ok := parsePrice(spec.SellingPrice)
	if !ok {
		coerced = append(coerced, "selling_price")
	}
	qty, ok := parseQty(spec.Qty)
	if !ok {
		coerced = append(coerced, "qty")
	}

	product := domain.Product{
		ItemCode:       itemCode,
		Name:           name,
		CostPrice:      cost,
		WholesalePrice: wholesale,
		SellingPrice:   selling,
		Qty:            qty,
		WarrantyType:   domain.ParseWarranty(spec.Warranty),
		TrackSerial:    spec.TrackSerial,
		LastBillNo:     strings.TrimSpace(spec.BillNo),
		LastBillDate:   strings.TrimSpace(spec.BillDate),
	}

	if supplierName := strings.TrimSpace(spec.Supplier); supplierName != "" {
		supplier, err := s.repo.UpsertSupplier(ctx, supplierName, "")
		if err != nil {
			return domain.Product{}, nil, err
		}
		product.SupplierID = supplier.ID
	}

	return product, coerced, nil
}

func (s *Service) reportCoercions(op string, itemCode string, coerced []string) {
	if len(coerced) == 0 {
		return
	}
	log.Printf("[service] WARN: product %s %s coerced fields to zero: %s", op, itemCode, strings.Join(coerced, ","))
}

// parsePrice parses a free-text money field. Empty means zero; malformed or
// negative text coerces to zero and reports false so the caller can surface
// it without blocking the save.
func parsePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Zero, false
	}
	return value, true
}

func parseQty(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	qty, err := strconv.Atoi(raw)
	if err != nil || qty < 0 {
		return 0, false
	}
	return qty, true
}
