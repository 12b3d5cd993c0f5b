package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"nexuspos/internal/domain"
	"nexuspos/internal/store"
	"nexuspos/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS suppliers (
			id          text PRIMARY KEY,
			name        text NOT NULL UNIQUE,
			phone       text NOT NULL DEFAULT '',
			created_at  timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id               text PRIMARY KEY,
			item_code        text NOT NULL UNIQUE,
			name             text NOT NULL,
			supplier_id      text NOT NULL DEFAULT '',
			cost_price       numeric(12,2) NOT NULL DEFAULT 0,
			wholesale_price  numeric(12,2) NOT NULL DEFAULT 0,
			selling_price    numeric(12,2) NOT NULL DEFAULT 0,
			qty              integer NOT NULL DEFAULT 0,
			warranty_type    text NOT NULL DEFAULT 'NONE',
			track_serial     boolean NOT NULL DEFAULT false,
			last_bill_no     text NOT NULL DEFAULT '',
			last_bill_date   text NOT NULL DEFAULT '',
			created_at       timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS stock_items (
			id             text PRIMARY KEY,
			serial_number  text NOT NULL UNIQUE,
			product_id     text NOT NULL REFERENCES products(id),
			status         text NOT NULL DEFAULT 'AVAILABLE'
		)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id             text PRIMARY KEY,
			invoice_no     text NOT NULL UNIQUE,
			customer_name  text NOT NULL DEFAULT '',
			doc_date       text NOT NULL DEFAULT '',
			total_amount   numeric(14,2) NOT NULL DEFAULT 0,
			doc_type       text NOT NULL,
			created_at     timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
			invoice_id     text NOT NULL REFERENCES invoices(id),
			line_no        integer NOT NULL,
			product_id     text NOT NULL,
			item_code      text NOT NULL DEFAULT '',
			description    text NOT NULL DEFAULT '',
			serial_number  text NOT NULL DEFAULT '',
			warranty       text NOT NULL DEFAULT 'NONE',
			qty            integer NOT NULL,
			unit_price     numeric(12,2) NOT NULL,
			total          numeric(14,2) NOT NULL,
			PRIMARY KEY (invoice_id, line_no)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			username    text PRIMARY KEY,
			password    text NOT NULL,
			role        text NOT NULL,
			active      boolean NOT NULL DEFAULT true,
			created_at  timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_items_product ON stock_items (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_date ON invoices (doc_date DESC, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: schema: %v", store.ErrStorage, err)
		}
	}
	return nil
}

func (s *Store) UpsertSupplier(ctx context.Context, name string, phone string) (*domain.Supplier, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: supplier name required", store.ErrValidation)
	}

	// INSERT ... ON CONFLICT keeps find-or-create atomic under concurrent
	// callers. Matching is the column's exact, case-sensitive value.
	supplier := domain.Supplier{ID: xid.New("sup"), Name: name, Phone: phone}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO suppliers (id, name, phone, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, phone, created_at
	`, supplier.ID, name, phone).Scan(&supplier.ID, &supplier.Name, &supplier.Phone, &supplier.CreatedAt)
	if err != nil {
		return nil, storageErr(err)
	}
	return &supplier, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, phone, created_at
		FROM suppliers
		ORDER BY name
	`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 32)
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Phone, &sup.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		suppliers = append(suppliers, sup)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return suppliers, nil
}

const productColumns = `id, item_code, name, supplier_id, cost_price, wholesale_price, selling_price,
	qty, warranty_type, track_serial, last_bill_no, last_bill_date, created_at`

func scanProduct(scanner interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	var warranty string
	err := scanner.Scan(&p.ID, &p.ItemCode, &p.Name, &p.SupplierID, &p.CostPrice, &p.WholesalePrice,
		&p.SellingPrice, &p.Qty, &warranty, &p.TrackSerial, &p.LastBillNo, &p.LastBillDate, &p.CreatedAt)
	p.WarrantyType = domain.WarrantyType(warranty)
	return p, err
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.ItemCode == "" || product.Name == "" {
		return nil, fmt.Errorf("%w: product id, item code and name required", store.ErrValidation)
	}

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, product.ID, product.ItemCode, product.Name, product.SupplierID, product.CostPrice,
		product.WholesalePrice, product.SellingPrice, product.Qty, string(product.WarrantyType),
		product.TrackSerial, product.LastBillNo, product.LastBillDate, product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: item code %s exists", store.ErrConflict, product.ItemCode)
		}
		return nil, storageErr(err)
	}

	created := product
	created.StockItems = nil
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.ItemCode == "" || product.Name == "" {
		return nil, fmt.Errorf("%w: product id, item code and name required", store.ErrValidation)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET item_code = $2, name = $3, supplier_id = $4, cost_price = $5, wholesale_price = $6,
		    selling_price = $7, qty = $8, warranty_type = $9, track_serial = $10,
		    last_bill_no = $11, last_bill_date = $12
		WHERE id = $1
	`, product.ID, product.ItemCode, product.Name, product.SupplierID, product.CostPrice,
		product.WholesalePrice, product.SellingPrice, product.Qty, string(product.WarrantyType),
		product.TrackSerial, product.LastBillNo, product.LastBillDate)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: item code %s exists", store.ErrConflict, product.ItemCode)
		}
		return nil, storageErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, storageErr(err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, product.ID)
	}

	return s.GetProduct(ctx, product.ID)
}

func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	// Engine-enforced cascade: stock items first, then the owner row.
	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_items WHERE product_id = $1`, productID); err != nil {
		return storageErr(err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return storageErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
	}

	if err := tx.Commit(); err != nil {
		return storageErr(err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
		}
		return nil, storageErr(err)
	}
	if err := s.attachStock(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at DESC, id DESC
	`)
}

func (s *Store) SearchProducts(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Product{}, nil
	}
	if limit < 1 {
		limit = 50
	}
	pattern := "%" + escapeLike(term) + "%"
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE $1 OR item_code ILIKE $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, pattern, limit)
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr(err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}

	for i := range products {
		if err := s.attachStock(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (s *Store) attachStock(ctx context.Context, product *domain.Product) error {
	if !product.TrackSerial {
		product.StockItems = nil
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, serial_number, product_id, status
		FROM stock_items
		WHERE product_id = $1
		ORDER BY serial_number
	`, product.ID)
	if err != nil {
		return storageErr(err)
	}
	defer rows.Close()

	items := make([]domain.StockItem, 0, 8)
	for rows.Next() {
		var item domain.StockItem
		if err := rows.Scan(&item.ID, &item.SerialNumber, &item.ProductID, &item.Status); err != nil {
			return storageErr(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return storageErr(err)
	}
	product.StockItems = items
	return nil
}

func (s *Store) ReplaceSerials(ctx context.Context, productID string, serials []string) ([]domain.StockItem, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	var trackSerial bool
	err = tx.QueryRowContext(ctx, `SELECT track_serial FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&trackSerial)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
		}
		return nil, storageErr(err)
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

	// A serial that was ever sold may not be re-stocked, and one held by
	// another product is taken. Checked before the delete so a conflict
	// leaves the ledger untouched.
	for _, serial := range incoming {
		var ownerID, status string
		err := tx.QueryRowContext(ctx, `
			SELECT product_id, status FROM stock_items WHERE serial_number = $1 FOR UPDATE
		`, serial).Scan(&ownerID, &status)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, storageErr(err)
		}
		if status == domain.StockSold {
			return nil, fmt.Errorf("%w: serial %s", store.ErrAlreadySold, serial)
		}
		if ownerID != productID {
			return nil, fmt.Errorf("%w: serial %s belongs to product %s", store.ErrConflict, serial, ownerID)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_items WHERE product_id = $1`, productID); err != nil {
		return nil, storageErr(err)
	}

	items := make([]domain.StockItem, 0, len(incoming))
	for _, serial := range incoming {
		item := domain.StockItem{
			ID:           xid.New("stk"),
			SerialNumber: serial,
			ProductID:    productID,
			Status:       domain.StockAvailable,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stock_items (id, serial_number, product_id, status)
			VALUES ($1, $2, $3, $4)
		`, item.ID, item.SerialNumber, item.ProductID, item.Status)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: serial %s exists", store.ErrConflict, serial)
			}
			return nil, storageErr(err)
		}
		items = append(items, item)
	}

	if trackSerial {
		if _, err := tx.ExecContext(ctx, `UPDATE products SET qty = $2 WHERE id = $1`, productID, len(items)); err != nil {
			return nil, storageErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func (s *Store) FindBySerial(ctx context.Context, serialNumber string) (*domain.StockItem, error) {
	var item domain.StockItem
	err := s.db.QueryRowContext(ctx, `
		SELECT id, serial_number, product_id, status
		FROM stock_items
		WHERE serial_number = $1
	`, serialNumber).Scan(&item.ID, &item.SerialNumber, &item.ProductID, &item.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: serial %s", store.ErrNotFound, serialNumber)
		}
		return nil, storageErr(err)
	}
	return &item, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	if inv.ID == "" || inv.InvoiceNo == "" {
		return nil, fmt.Errorf("%w: invoice id and number required", store.ErrValidation)
	}
	if len(inv.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", store.ErrValidation)
	}
	if inv.Type != domain.DocInvoice && inv.Type != domain.DocQuotation {
		return nil, fmt.Errorf("%w: unknown document type %q", store.ErrValidation, inv.Type)
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, storageErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (id, invoice_no, customer_name, doc_date, total_amount, doc_type, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, inv.ID, inv.InvoiceNo, inv.CustomerName, inv.Date, inv.TotalAmount, inv.Type, inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: invoice no %s exists", store.ErrConflict, inv.InvoiceNo)
		}
		return nil, storageErr(err)
	}

	for i, line := range inv.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_id, line_no, product_id, item_code, description,
				serial_number, warranty, qty, unit_price, total)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, inv.ID, i+1, line.ProductID, line.ItemCode, line.Description, line.SerialNumber,
			string(line.Warranty), line.Qty, line.UnitPrice, line.Total)
		if err != nil {
			return nil, storageErr(err)
		}
	}

	// Stock effects apply only to real invoices; quotations never touch the
	// ledger or quantities.
	if inv.Type == domain.DocInvoice {
		for _, line := range inv.Items {
			if line.SerialNumber != "" {
				// Conditional transition: validation happened earlier in the
				// service, but status is re-checked here at write time so two
				// commits can never both sell the same unit.
				res, err := tx.ExecContext(ctx, `
					UPDATE stock_items
					SET status = $3
					WHERE serial_number = $1 AND product_id = $2 AND status = $4
				`, line.SerialNumber, line.ProductID, domain.StockSold, domain.StockAvailable)
				if err != nil {
					return nil, storageErr(err)
				}
				affected, err := res.RowsAffected()
				if err != nil {
					return nil, storageErr(err)
				}
				if affected == 0 {
					return nil, fmt.Errorf("%w: serial %s", store.ErrAlreadySold, line.SerialNumber)
				}
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET qty = qty - $2
				WHERE id = $1 AND qty >= $2
			`, line.ProductID, line.Qty)
			if err != nil {
				return nil, storageErr(err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return nil, storageErr(err)
			}
			if affected == 0 {
				// Either the product vanished or the decrement would go
				// negative; both indicate a lost update, never clamp.
				return nil, fmt.Errorf("%w: stock for product %s would go negative", store.ErrConflict, line.ProductID)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageErr(err)
	}

	created := inv
	return &created, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter domain.HistoryFilter) ([]domain.Invoice, error) {
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}

	query := `
		SELECT id, invoice_no, customer_name, doc_date, total_amount, doc_type, created_at
		FROM invoices
	`
	conds := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("doc_type = $%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Term); term != "" {
		args = append(args, "%"+escapeLike(term)+"%")
		conds = append(conds, fmt.Sprintf("(invoice_no ILIKE $%d OR customer_name ILIKE $%d)", len(args), len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY doc_date DESC, created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, limit)
	for rows.Next() {
		var inv domain.Invoice
		if err := rows.Scan(&inv.ID, &inv.InvoiceNo, &inv.CustomerName, &inv.Date, &inv.TotalAmount, &inv.Type, &inv.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}

	for i := range invoices {
		items, err := s.invoiceItems(ctx, invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Items = items
	}
	return invoices, nil
}

func (s *Store) invoiceItems(ctx context.Context, invoiceID string) ([]domain.InvoiceItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, item_code, description, serial_number, warranty, qty, unit_price, total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY line_no
	`, invoiceID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	items := make([]domain.InvoiceItem, 0, 8)
	for rows.Next() {
		var item domain.InvoiceItem
		var warranty string
		if err := rows.Scan(&item.ProductID, &item.ItemCode, &item.Description, &item.SerialNumber,
			&warranty, &item.Qty, &item.UnitPrice, &item.Total); err != nil {
			return nil, storageErr(err)
		}
		item.Warranty = domain.WarrantyType(warranty)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return fmt.Errorf("%w: username and password required", store.ErrValidation)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s exists", store.ErrConflict, user.Username)
		}
		return storageErr(err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password = $2 WHERE username = $1`, username, password)
	if err != nil {
		return storageErr(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s", store.ErrNotFound, username)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", store.ErrStorage, err)
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
