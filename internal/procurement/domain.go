package procurement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DocStatus mirrors the document lifecycle marker of the host ERP.
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

// ImportationStatus tracks the health-authority decision on an importation approval.
type ImportationStatus string

const (
	ImportationPending           ImportationStatus = "Pending"
	ImportationPartiallyApproved ImportationStatus = "Partially Approved"
	ImportationTotallyApproved   ImportationStatus = "Totally Approved"
	ImportationRejected          ImportationStatus = "Rejected"
)

// ParseImportationStatus validates a raw status value.
func ParseImportationStatus(raw string) (ImportationStatus, error) {
	switch status := ImportationStatus(raw); status {
	case ImportationPending, ImportationPartiallyApproved, ImportationTotallyApproved, ImportationRejected:
		return status, nil
	default:
		return "", ErrUnknownImportationStatus
	}
}

// SupplierQuotation is the supplier quotation header acting as an EDA importation
// approval, together with its item lines.
type SupplierQuotation struct {
	Name                   string
	NamingSeries           string
	DocStatus              DocStatus
	Supplier               string
	TransactionDate        time.Time
	ValidTill              *time.Time
	Currency               string
	Terms                  string
	ImportationStatus      ImportationStatus
	ImportationApprovalRef string
	ImportationDate        *time.Time
	SPIMRNo                string
	APIMRNo                string
	YearPlan               string
	AimOfModify            string
	NewConditions          string
	AimOfExtend            string
	Items                  []QuotationItem
}

// QuotationItem is a quoted line. ActualQty holds the approved quantity.
type QuotationItem struct {
	ID        int64
	Idx       int
	ItemCode  string
	ItemName  string
	UOM       string
	Qty       decimal.Decimal
	ActualQty decimal.Decimal
	Rate      decimal.Decimal
}

// Clone returns a deep copy of the quotation. Row identifiers are kept; callers
// creating a new record reset them.
func (q SupplierQuotation) Clone() SupplierQuotation {
	out := q
	out.ValidTill = cloneTime(q.ValidTill)
	out.ImportationDate = cloneTime(q.ImportationDate)
	if q.Items != nil {
		out.Items = make([]QuotationItem, len(q.Items))
		copy(out.Items, q.Items)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

var (
	// ErrNotFound indicates the quotation does not exist.
	ErrNotFound = errors.New("procurement: supplier quotation not found")
	// ErrNotSubmitted occurs when a variant is requested from a non-submitted source.
	ErrNotSubmitted = errors.New("procurement: source quotation must be submitted (docstatus = 1)")
	// ErrCancelled occurs when a cancelled quotation is modified.
	ErrCancelled = errors.New("procurement: supplier quotation is cancelled")
	// ErrUnknownImportationStatus indicates an unsupported importation status value.
	ErrUnknownImportationStatus = errors.New("procurement: unknown importation status")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procurement: invalid input")
	// ErrDuplicate indicates the generated name is already taken.
	ErrDuplicate = errors.New("procurement: duplicate supplier quotation")
)
