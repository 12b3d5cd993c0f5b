package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WarrantyType string

const (
	WarrantyNone       WarrantyType = "NONE"
	WarrantyOneYear    WarrantyType = "1Y"
	WarrantyTwoYears   WarrantyType = "2Y"
	WarrantyThreeYears WarrantyType = "3Y"
)

const (
	StockAvailable = "AVAILABLE"
	StockSold      = "SOLD"
)

const (
	DocInvoice   = "INVOICE"
	DocQuotation = "QUOTATION"
)

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is the catalog record. StockItems is populated on reads for
// products that track serial numbers; it is never written through directly.
type Product struct {
	ID             string          `json:"id"`
	ItemCode       string          `json:"item_code"`
	Name           string          `json:"name"`
	SupplierID     string          `json:"supplier_id,omitempty"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	Qty            int             `json:"qty"`
	WarrantyType   WarrantyType    `json:"warranty_type"`
	TrackSerial    bool            `json:"track_serial"`
	LastBillNo     string          `json:"last_bill_no,omitempty"`
	LastBillDate   string          `json:"last_bill_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	StockItems     []StockItem     `json:"stock_items,omitempty"`
}

// StockItem is one serialized unit. Its serial number is globally unique
// and its status moves AVAILABLE -> SOLD exactly once.
type StockItem struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serial_number"`
	ProductID    string `json:"product_id"`
	Status       string `json:"status"`
}

// ProductSpec is the caller-supplied form for creating or updating a
// product. Price and qty fields arrive as free text; unparsable values
// coerce to zero rather than rejecting the record.
type ProductSpec struct {
	ItemCode       string   `json:"item_code"`
	Name           string   `json:"name"`
	Supplier       string   `json:"supplier,omitempty"`
	BillNo         string   `json:"bill_no,omitempty"`
	BillDate       string   `json:"bill_date,omitempty"`
	CostPrice      string   `json:"cost_price"`
	WholesalePrice string   `json:"wholesale_price"`
	SellingPrice   string   `json:"selling_price"`
	Qty            string   `json:"qty"`
	Warranty       string   `json:"warranty"`
	TrackSerial    bool     `json:"track_serial"`
	Serials        []string `json:"serials,omitempty"`
}

// ProductSaveResult reports the saved product together with any fields
// whose values were coerced to zero during parsing.
type ProductSaveResult struct {
	Product       Product  `json:"product"`
	CoercedFields []string `json:"coerced_fields,omitempty"`
}

type InvoiceSpec struct {
	InvoiceNo    string `json:"invoice_no"`
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	TotalAmount  string `json:"total_amount,omitempty"`
}

type InvoiceLineSpec struct {
	ProductID    string          `json:"product_id"`
	SerialNumber string          `json:"serial_number,omitempty"`
	Warranty     string          `json:"warranty,omitempty"`
	Qty          int             `json:"qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

type Invoice struct {
	ID           string          `json:"id"`
	InvoiceNo    string          `json:"invoice_no"`
	CustomerName string          `json:"customer_name"`
	Date         string          `json:"date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Type         string          `json:"type"`
	CreatedAt    time.Time       `json:"created_at"`
	Items        []InvoiceItem   `json:"items"`
}

// InvoiceItem is one ordered line of a committed document. Line order is
// preserved exactly as submitted so printed documents reproduce.
type InvoiceItem struct {
	ProductID    string          `json:"product_id"`
	ItemCode     string          `json:"item_code"`
	Description  string          `json:"description"`
	SerialNumber string          `json:"serial_number,omitempty"`
	Warranty     WarrantyType    `json:"warranty"`
	Qty          int             `json:"qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Total        decimal.Decimal `json:"total"`
}

const (
	ResolveExact      = "exact"
	ResolveCandidates = "candidates"
	ResolveNone       = "none"
)

// ResolveResult is the outcome of mapping a scanned or typed token to
// either one serialized unit or a set of candidate products.
type ResolveResult struct {
	Outcome    string     `json:"outcome"`
	StockItem  *StockItem `json:"stock_item,omitempty"`
	Product    *Product   `json:"product,omitempty"`
	Candidates []Product  `json:"candidates,omitempty"`
}

type HistoryFilter struct {
	Type  string `json:"type,omitempty"`
	Term  string `json:"term,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
