package store

import (
	"context"
	"errors"

	"nexuspos/internal/domain"
)

// Error taxonomy shared by all repository implementations. Callers branch
// with errors.Is; implementations wrap these with offending field or id
// detail via fmt.Errorf("%w: ...").
var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness or state conflict: duplicate item code
	// or invoice number, duplicate serial, or a stock count that would go
	// negative (a lost-update indicator, never silently clamped).
	ErrConflict = errors.New("conflict")
	// ErrAlreadySold marks a scan or sale attempt against a SOLD unit. It is
	// distinct from ErrConflict so the caller can warn "already sold".
	ErrAlreadySold = errors.New("serial already sold")
	// ErrPriceFloor marks a line priced below the product's wholesale price.
	ErrPriceFloor = errors.New("price below wholesale floor")
	// ErrNotFound marks an operation against a missing id.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks an underlying I/O or durability failure. The whole
	// operation is rolled back; nothing is partially applied.
	ErrStorage = errors.New("storage failure")
)

// Repository is the durable surface behind the transaction engine. One
// repository instance mediates all mutating access for a given inventory;
// implementations must make each mutating method atomic (all-or-nothing).
type Repository interface {
	// Catalog.
	UpsertSupplier(ctx context.Context, name string, phone string) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	// DeleteProduct cascades deletion of the product's stock items in the
	// same storage transaction.
	DeleteProduct(ctx context.Context, productID string) error
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, term string, limit int) ([]domain.Product, error)

	// Serial ledger.
	// ReplaceSerials is a destructive full replace: it deletes every stock
	// item owned by the product and inserts a fresh AVAILABLE row (new id)
	// per non-empty serial. Serials that exist as SOLD anywhere, or as
	// AVAILABLE under another product, abort with ErrConflict before any
	// mutation. When the product tracks serials its qty is re-synced to the
	// inserted count inside the same transaction.
	ReplaceSerials(ctx context.Context, productID string, serials []string) ([]domain.StockItem, error)
	FindBySerial(ctx context.Context, serialNumber string) (*domain.StockItem, error)

	// Transactions. CreateInvoice persists the header plus ordered items
	// and, only when inv.Type is INVOICE, marks serials sold (conditional
	// on current AVAILABLE status) and decrements product quantities, all
	// as one durable unit. The invoices table doubles as the append-only
	// history; ListInvoices returns newest-first with items eagerly loaded.
	CreateInvoice(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.HistoryFilter) ([]domain.Invoice, error)

	// Auth accounts.
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
