package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/onco-erp/onco/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	GetQuotationForUpdate(ctx context.Context, name string) (SupplierQuotation, error)
	NextSeriesValue(ctx context.Context, prefix string) (int64, error)
	InsertQuotation(ctx context.Context, q SupplierQuotation) error
	UpdateImportation(ctx context.Context, q SupplierQuotation) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// GetQuotation returns the quotation header and its item lines.
func (r *Repository) GetQuotation(ctx context.Context, name string) (SupplierQuotation, error) {
	return getQuotation(ctx, r.pool, name, false)
}

const quotationColumns = `name, naming_series, docstatus, supplier, transaction_date, valid_till, currency, terms,
	importation_status, importation_approval_ref, importation_date, spimr_no, apimr_no, year_plan,
	aim_of_modify, new_conditions, aim_of_extend`

func getQuotation(ctx context.Context, q dbtx, name string, forUpdate bool) (SupplierQuotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM supplier_quotations WHERE name=$1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var sq SupplierQuotation
	var docStatus int
	var status string
	err := q.QueryRow(ctx, query, name).Scan(
		&sq.Name, &sq.NamingSeries, &docStatus, &sq.Supplier, &sq.TransactionDate, &sq.ValidTill, &sq.Currency, &sq.Terms,
		&status, &sq.ImportationApprovalRef, &sq.ImportationDate, &sq.SPIMRNo, &sq.APIMRNo, &sq.YearPlan,
		&sq.AimOfModify, &sq.NewConditions, &sq.AimOfExtend,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SupplierQuotation{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return SupplierQuotation{}, err
	}
	sq.DocStatus = DocStatus(docStatus)
	sq.ImportationStatus = ImportationStatus(status)

	rows, err := q.Query(ctx, `SELECT id, idx, item_code, item_name, uom, qty::text, actual_qty::text, rate::text
FROM supplier_quotation_items WHERE parent=$1 ORDER BY idx`, name)
	if err != nil {
		return SupplierQuotation{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item QuotationItem
		var qty, actual, rate string
		if err := rows.Scan(&item.ID, &item.Idx, &item.ItemCode, &item.ItemName, &item.UOM, &qty, &actual, &rate); err != nil {
			return SupplierQuotation{}, err
		}
		if item.Qty, err = decimal.NewFromString(qty); err != nil {
			return SupplierQuotation{}, fmt.Errorf("procurement: item %d qty: %w", item.Idx, err)
		}
		if item.ActualQty, err = decimal.NewFromString(actual); err != nil {
			return SupplierQuotation{}, fmt.Errorf("procurement: item %d actual qty: %w", item.Idx, err)
		}
		if item.Rate, err = decimal.NewFromString(rate); err != nil {
			return SupplierQuotation{}, fmt.Errorf("procurement: item %d rate: %w", item.Idx, err)
		}
		sq.Items = append(sq.Items, item)
	}
	if err := rows.Err(); err != nil {
		return SupplierQuotation{}, err
	}
	return sq, nil
}

func (tx *txRepo) GetQuotationForUpdate(ctx context.Context, name string) (SupplierQuotation, error) {
	return getQuotation(ctx, tx.tx, name, true)
}

// NextSeriesValue increments the counter behind an expanded naming-series prefix.
func (tx *txRepo) NextSeriesValue(ctx context.Context, prefix string) (int64, error) {
	var current int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO naming_series (prefix, current) VALUES ($1, 1)
ON CONFLICT (prefix) DO UPDATE SET current = naming_series.current + 1
RETURNING current`, prefix).Scan(&current)
	return current, err
}

func (tx *txRepo) InsertQuotation(ctx context.Context, q SupplierQuotation) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO supplier_quotations (`+quotationColumns+`, created_at, modified_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW(),NOW())`,
		q.Name, q.NamingSeries, int(q.DocStatus), q.Supplier, q.TransactionDate, q.ValidTill, q.Currency, q.Terms,
		string(q.ImportationStatus), q.ImportationApprovalRef, q.ImportationDate, q.SPIMRNo, q.APIMRNo, q.YearPlan,
		q.AimOfModify, q.NewConditions, q.AimOfExtend)
	if err != nil {
		return mapWriteError(err, q.Name)
	}
	for _, item := range q.Items {
		_, err := tx.tx.Exec(ctx, `INSERT INTO supplier_quotation_items (parent, idx, item_code, item_name, uom, qty, actual_qty, rate)
VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric,$8::numeric)`,
			q.Name, item.Idx, item.ItemCode, item.ItemName, item.UOM, item.Qty.String(), item.ActualQty.String(), item.Rate.String())
		if err != nil {
			return mapWriteError(err, q.Name)
		}
	}
	return nil
}

func (tx *txRepo) UpdateImportation(ctx context.Context, q SupplierQuotation) error {
	_, err := tx.tx.Exec(ctx, `UPDATE supplier_quotations SET importation_status=$1, importation_date=$2, modified_at=NOW() WHERE name=$3`,
		string(q.ImportationStatus), q.ImportationDate, q.Name)
	if err != nil {
		return err
	}
	for _, item := range q.Items {
		if _, err := tx.tx.Exec(ctx, `UPDATE supplier_quotation_items SET actual_qty=$1::numeric WHERE id=$2`, item.ActualQty.String(), item.ID); err != nil {
			return err
		}
	}
	return nil
}

func mapWriteError(err error, name string) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	return err
}

