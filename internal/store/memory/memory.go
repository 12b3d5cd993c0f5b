package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"nexuspos/internal/domain"
	"nexuspos/internal/store"
	"nexuspos/internal/xid"
)

// Store is the in-memory repository. A single RWMutex makes every mutating
// method atomic, which matches the engine's single-logical-writer model.
type Store struct {
	mu              sync.RWMutex
	productsByID    map[string]domain.Product
	productIDByCode map[string]string
	stockBySerial   map[string]domain.StockItem
	suppliersByID   map[string]domain.Supplier
	supplierIDName  map[string]string
	invoicesByID    map[string]domain.Invoice
	invoiceIDByNo   map[string]string
	invoiceOrder    []string
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func New() *Store {
	return &Store{
		productsByID:    make(map[string]domain.Product),
		productIDByCode: make(map[string]string),
		stockBySerial:   make(map[string]domain.StockItem),
		suppliersByID:   make(map[string]domain.Supplier),
		supplierIDName:  make(map[string]string),
		invoicesByID:    make(map[string]domain.Invoice),
		invoiceIDByNo:   make(map[string]string),
		invoiceOrder:    make([]string, 0, 64),
		usersByUsername: seedUsers(),
	}
}

// NewSeeded returns a store preloaded with a small electronics catalog so
// the backend is usable without PostgreSQL.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	type seed struct {
		code     string
		name     string
		supplier string
		cost     string
		whole    string
		sell     string
		qty      int
		warranty domain.WarrantyType
		serials  []string
	}
	seeds := []seed{
		{"ITM-100101", "14in Business Laptop i5", "TechTrade Distribution", "540.00", "610.00", "699.00", 0, domain.WarrantyTwoYears, []string{"LPT-SN-0001", "LPT-SN-0002", "LPT-SN-0003"}},
		{"ITM-100102", "24in IPS Monitor", "TechTrade Distribution", "96.00", "118.00", "139.00", 0, domain.WarrantyThreeYears, []string{"MON-SN-1001", "MON-SN-1002"}},
		{"ITM-100103", "Android Phone 128GB", "Mobitel Imports", "205.00", "232.00", "259.00", 0, domain.WarrantyOneYear, []string{"PHN-SN-7001", "PHN-SN-7002", "PHN-SN-7003", "PHN-SN-7004"}},
		{"ITM-100104", "Wireless Mouse", "TechTrade Distribution", "6.50", "8.00", "11.50", 25, domain.WarrantyNone, nil},
		{"ITM-100105", "USB-C Cable 1m", "Mobitel Imports", "1.20", "1.80", "3.00", 60, domain.WarrantyNone, nil},
		{"ITM-100106", "Mechanical Keyboard", "TechTrade Distribution", "28.00", "34.00", "42.00", 12, domain.WarrantyOneYear, nil},
	}

	for i, sd := range seeds {
		supplier, _ := s.UpsertSupplier(context.Background(), sd.supplier, "")
		p := domain.Product{
			ID:             xid.New("prod"),
			ItemCode:       sd.code,
			Name:           sd.name,
			SupplierID:     supplier.ID,
			CostPrice:      decimal.RequireFromString(sd.cost),
			WholesalePrice: decimal.RequireFromString(sd.whole),
			SellingPrice:   decimal.RequireFromString(sd.sell),
			Qty:            sd.qty,
			WarrantyType:   sd.warranty,
			TrackSerial:    len(sd.serials) > 0,
			CreatedAt:      now.Add(time.Duration(i) * time.Second),
		}
		if _, err := s.CreateProduct(context.Background(), p); err != nil {
			log.Fatalf("[memory-store] seed product %s: %v", sd.code, err)
		}
		if len(sd.serials) > 0 {
			if _, err := s.ReplaceSerials(context.Background(), p.ID, sd.serials); err != nil {
				log.Fatalf("[memory-store] seed serials %s: %v", sd.code, err)
			}
		}
	}

	return s
}

func (s *Store) UpsertSupplier(_ context.Context, name string, phone string) (*domain.Supplier, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: supplier name required", store.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Exact, case-sensitive match only: "Acme" and "acme" are two suppliers.
	if id, exists := s.supplierIDName[name]; exists {
		supplier := s.suppliersByID[id]
		return &supplier, nil
	}

	supplier := domain.Supplier{
		ID:        xid.New("sup"),
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	s.suppliersByID[supplier.ID] = supplier
	s.supplierIDName[name] = supplier.ID
	created := supplier
	return &created, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.Supplier, 0, len(s.suppliersByID))
	for _, sup := range s.suppliersByID {
		suppliers = append(suppliers, sup)
	}
	slices.SortFunc(suppliers, func(a, b domain.Supplier) int {
		return strings.Compare(a.Name, b.Name)
	})
	return suppliers, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.ItemCode == "" || product.Name == "" {
		return nil, fmt.Errorf("%w: product id, item code and name required", store.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.productsByID[product.ID]; exists {
		return nil, fmt.Errorf("%w: product id %s exists", store.ErrConflict, product.ID)
	}
	if _, exists := s.productIDByCode[product.ItemCode]; exists {
		return nil, fmt.Errorf("%w: item code %s exists", store.ErrConflict, product.ItemCode)
	}

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	product.StockItems = nil
	s.productsByID[product.ID] = product
	s.productIDByCode[product.ItemCode] = product.ID

	created := s.withStockLocked(product)
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.ItemCode == "" || product.Name == "" {
		return nil, fmt.Errorf("%w: product id, item code and name required", store.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.productsByID[product.ID]
	if !exists {
		return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, product.ID)
	}
	if other, taken := s.productIDByCode[product.ItemCode]; taken && other != product.ID {
		return nil, fmt.Errorf("%w: item code %s exists", store.ErrConflict, product.ItemCode)
	}

	if existing.ItemCode != product.ItemCode {
		delete(s.productIDByCode, existing.ItemCode)
		s.productIDByCode[product.ItemCode] = product.ID
	}
	product.CreatedAt = existing.CreatedAt
	product.StockItems = nil
	s.productsByID[product.ID] = product

	updated := s.withStockLocked(product)
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.productsByID[productID]
	if !exists {
		return fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
	}

	// Cascade: the product strongly owns its stock items.
	for serial, item := range s.stockBySerial {
		if item.ProductID == productID {
			delete(s.stockBySerial, serial)
		}
	}
	delete(s.productIDByCode, product.ItemCode)
	delete(s.productsByID, productID)
	return nil
}

func (s *Store) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.productsByID[productID]
	if !exists {
		return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
	}
	found := s.withStockLocked(product)
	return &found, nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.productsByID))
	for _, p := range s.productsByID {
		products = append(products, s.withStockLocked(p))
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return products, nil
}

func (s *Store) SearchProducts(_ context.Context, term string, limit int) ([]domain.Product, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []domain.Product{}, nil
	}
	if limit < 1 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.Product, 0, 16)
	for _, p := range s.productsByID {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.ItemCode), term) {
			matches = append(matches, s.withStockLocked(p))
		}
	}
	slices.SortFunc(matches, func(a, b domain.Product) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) ReplaceSerials(_ context.Context, productID string, serials []string) ([]domain.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.productsByID[productID]
	if !exists {
		return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
	}

	incoming := make([]string, 0, len(serials))
	seen := make(map[string]struct{}, len(serials))
	for _, serial := range serials {
		serial = strings.TrimSpace(serial)
		if serial == "" {
			continue
		}
		if _, dup := seen[serial]; dup {
			return nil, fmt.Errorf("%w: duplicate serial %s in request", store.ErrConflict, serial)
		}
		seen[serial] = struct{}{}
		incoming = append(incoming, serial)
	}

	// Validate before any mutation: a serial that was ever sold may not be
	// re-stocked under the same number, and a serial held by another product
	// is taken.
	for _, serial := range incoming {
		if existing, taken := s.stockBySerial[serial]; taken {
			if existing.Status == domain.StockSold {
				return nil, fmt.Errorf("%w: serial %s", store.ErrAlreadySold, serial)
			}
			if existing.ProductID != productID {
				return nil, fmt.Errorf("%w: serial %s belongs to product %s", store.ErrConflict, serial, existing.ProductID)
			}
		}
	}

	// Destructive full replace: old rows disappear, new rows get new ids.
	for serial, item := range s.stockBySerial {
		if item.ProductID == productID {
			delete(s.stockBySerial, serial)
		}
	}

	items := make([]domain.StockItem, 0, len(incoming))
	for _, serial := range incoming {
		item := domain.StockItem{
			ID:           xid.New("stk"),
			SerialNumber: serial,
			ProductID:    productID,
			Status:       domain.StockAvailable,
		}
		s.stockBySerial[serial] = item
		items = append(items, item)
	}

	if product.TrackSerial {
		product.Qty = len(items)
		s.productsByID[productID] = product
	}

	return items, nil
}

func (s *Store) FindBySerial(_ context.Context, serialNumber string) (*domain.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.stockBySerial[serialNumber]
	if !exists {
		return nil, fmt.Errorf("%w: serial %s", store.ErrNotFound, serialNumber)
	}
	found := item
	return &found, nil
}

func (s *Store) CreateInvoice(_ context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	if inv.ID == "" || inv.InvoiceNo == "" {
		return nil, fmt.Errorf("%w: invoice id and number required", store.ErrValidation)
	}
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", store.ErrValidation)
	}
	if inv.Type != domain.DocInvoice && inv.Type != domain.DocQuotation {
		return nil, fmt.Errorf("%w: unknown document type %q", store.ErrValidation, inv.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoiceIDByNo[inv.InvoiceNo]; exists {
		return nil, fmt.Errorf("%w: invoice no %s exists", store.ErrConflict, inv.InvoiceNo)
	}

	// Re-check every stock effect before applying any of them, so a failure
	// leaves no partial state behind the single writer lock.
	if inv.Type == domain.DocInvoice {
		pendingQty := make(map[string]int, len(inv.Items))
		pendingSold := make(map[string]struct{}, len(inv.Items))
		for _, line := range inv.Items {
			product, exists := s.productsByID[line.ProductID]
			if !exists {
				return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, line.ProductID)
			}
			if line.SerialNumber != "" {
				item, found := s.stockBySerial[line.SerialNumber]
				if !found {
					return nil, fmt.Errorf("%w: serial %s does not exist", store.ErrConflict, line.SerialNumber)
				}
				// A serial claimed by an earlier line of this invoice counts
				// as sold for every later line.
				if _, claimed := pendingSold[line.SerialNumber]; claimed || item.Status == domain.StockSold {
					return nil, fmt.Errorf("%w: serial %s", store.ErrAlreadySold, line.SerialNumber)
				}
				pendingSold[line.SerialNumber] = struct{}{}
				if item.ProductID != line.ProductID {
					return nil, fmt.Errorf("%w: serial %s belongs to another product", store.ErrValidation, line.SerialNumber)
				}
			}
			pendingQty[line.ProductID] += line.Qty
			if product.Qty-pendingQty[line.ProductID] < 0 {
				return nil, fmt.Errorf("%w: stock for product %s would go negative", store.ErrConflict, line.ProductID)
			}
		}

		for _, line := range inv.Items {
			if line.SerialNumber != "" {
				item := s.stockBySerial[line.SerialNumber]
				item.Status = domain.StockSold
				s.stockBySerial[line.SerialNumber] = item
			}
			product := s.productsByID[line.ProductID]
			product.Qty -= line.Qty
			s.productsByID[line.ProductID] = product
		}
	}

	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	stored := inv
	stored.Items = make([]domain.InvoiceItem, len(inv.Items))
	copy(stored.Items, inv.Items)

	s.invoicesByID[stored.ID] = stored
	s.invoiceIDByNo[stored.InvoiceNo] = stored.ID
	s.invoiceOrder = append(s.invoiceOrder, stored.ID)

	created := stored
	created.Items = make([]domain.InvoiceItem, len(stored.Items))
	copy(created.Items, stored.Items)
	return &created, nil
}

func (s *Store) ListInvoices(_ context.Context, filter domain.HistoryFilter) ([]domain.Invoice, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}
	term := strings.ToLower(strings.TrimSpace(filter.Term))

	s.mu.RLock()
	defer s.mu.RUnlock()

	invoices := make([]domain.Invoice, 0, len(s.invoicesByID))
	for _, inv := range s.invoicesByID {
		if filter.Type != "" && inv.Type != filter.Type {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNo), term) &&
			!strings.Contains(strings.ToLower(inv.CustomerName), term) {
			continue
		}
		cp := inv
		cp.Items = make([]domain.InvoiceItem, len(inv.Items))
		copy(cp.Items, inv.Items)
		invoices = append(invoices, cp)
	}

	slices.SortFunc(invoices, func(a, b domain.Invoice) int {
		if a.Date != b.Date {
			return strings.Compare(b.Date, a.Date)
		}
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return invoices, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return fmt.Errorf("%w: username and password required", store.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return fmt.Errorf("%w: user %s exists", store.ErrConflict, user.Username)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return fmt.Errorf("%w: user %s", store.ErrNotFound, username)
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

// withStockLocked attaches the product's stock items to a copy. Caller must
// hold at least the read lock.
func (s *Store) withStockLocked(product domain.Product) domain.Product {
	if !product.TrackSerial {
		product.StockItems = nil
		return product
	}
	items := make([]domain.StockItem, 0, 4)
	for _, item := range s.stockBySerial {
		if item.ProductID == product.ID {
			items = append(items, item)
		}
	}
	slices.SortFunc(items, func(a, b domain.StockItem) int {
		return strings.Compare(a.SerialNumber, b.SerialNumber)
	})
	product.StockItems = items
	return product
}
