package procurement

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/onco-erp/onco/internal/shared"
)

type memoryQuotationRepo struct {
	quotations map[string]SupplierQuotation
	series     map[string]int64
	nextItemID int64
	failInsert error
}

type memoryQuotationTx struct {
	repo *memoryQuotationRepo
}

func newMemoryQuotationRepo() *memoryQuotationRepo {
	return &memoryQuotationRepo{
		quotations: make(map[string]SupplierQuotation),
		series:     make(map[string]int64),
	}
}

func (r *memoryQuotationRepo) add(q SupplierQuotation) {
	for i := range q.Items {
		r.nextItemID++
		q.Items[i].ID = r.nextItemID
	}
	r.quotations[q.Name] = q.Clone()
}

func (r *memoryQuotationRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[string]SupplierQuotation, len(r.quotations))
	for k, v := range r.quotations {
		snapshot[k] = v.Clone()
	}
	seriesSnapshot := make(map[string]int64, len(r.series))
	for k, v := range r.series {
		seriesSnapshot[k] = v
	}
	if err := fn(ctx, &memoryQuotationTx{repo: r}); err != nil {
		r.quotations = snapshot
		r.series = seriesSnapshot
		return err
	}
	return nil
}

func (r *memoryQuotationRepo) GetQuotation(ctx context.Context, name string) (SupplierQuotation, error) {
	q, ok := r.quotations[name]
	if !ok {
		return SupplierQuotation{}, ErrNotFound
	}
	return q.Clone(), nil
}

func (tx *memoryQuotationTx) GetQuotationForUpdate(ctx context.Context, name string) (SupplierQuotation, error) {
	return tx.repo.GetQuotation(ctx, name)
}

func (tx *memoryQuotationTx) NextSeriesValue(ctx context.Context, prefix string) (int64, error) {
	tx.repo.series[prefix]++
	return tx.repo.series[prefix], nil
}

func (tx *memoryQuotationTx) InsertQuotation(ctx context.Context, q SupplierQuotation) error {
	if tx.repo.failInsert != nil {
		return tx.repo.failInsert
	}
	if _, exists := tx.repo.quotations[q.Name]; exists {
		return ErrDuplicate
	}
	tx.repo.add(q)
	return nil
}

func (tx *memoryQuotationTx) UpdateImportation(ctx context.Context, q SupplierQuotation) error {
	tx.repo.quotations[q.Name] = q.Clone()
	return nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (a *memoryAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func approvedQuotation(name, series string) SupplierQuotation {
	valid := date(2026, time.March, 31)
	return SupplierQuotation{
		Name:              name,
		NamingSeries:      series,
		DocStatus:         DocStatusSubmitted,
		Supplier:          "Pharma Supplies Ltd",
		TransactionDate:   date(2026, time.January, 5),
		ValidTill:         &valid,
		Currency:          "EGP",
		ImportationStatus: ImportationTotallyApproved,
		SPIMRNo:           "SP-778",
		YearPlan:          "2026",
		AimOfModify:       "left over",
		Items: []QuotationItem{
			{Idx: 1, ItemCode: "ONC-001", ItemName: "Cisplatin 50mg", UOM: "Vial", Qty: decimal.NewFromInt(100), ActualQty: decimal.NewFromInt(100), Rate: decimal.RequireFromString("12.50")},
			{Idx: 2, ItemCode: "ONC-002", ItemName: "Paclitaxel 100mg", UOM: "Vial", Qty: decimal.NewFromInt(40), ActualQty: decimal.NewFromInt(40), Rate: decimal.RequireFromString("88.10")},
		},
	}
}

func newTestService(repo RepositoryPort, audit AuditPort) *Service {
	svc := NewService(repo, audit, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.clock = func() time.Time { return date(2026, time.October, 16) }
	return svc
}

func TestCreateModification(t *testing.T) {
	repo := newMemoryQuotationRepo()
	repo.add(approvedQuotation("SQ-0001", "EDA-SPIMR-.YYYY.-.#####"))
	audit := &memoryAudit{}
	svc := newTestService(repo, audit)

	name, err := svc.CreateModification(context.Background(), "SQ-0001", "Updated packaging")
	require.NoError(t, err)
	require.Equal(t, "EDA-SPIMR-MD-2026-00001", name)

	created, err := repo.GetQuotation(context.Background(), name)
	require.NoError(t, err)
	require.Equal(t, "EDA-SPIMR-MD-.YYYY.-.#####", created.NamingSeries)
	require.Equal(t, "SQ-0001", created.ImportationApprovalRef)
	require.Equal(t, ImportationPending, created.ImportationStatus)
	require.Equal(t, DocStatusDraft, created.DocStatus)
	require.Equal(t, DefaultAimOfModify, created.AimOfModify)
	require.Equal(t, "Updated packaging", created.NewConditions)
	require.Equal(t, "Pharma Supplies Ltd", created.Supplier)
	require.Len(t, created.Items, 2)
	require.True(t, created.Items[0].Qty.Equal(decimal.NewFromInt(100)))

	source, err := repo.GetQuotation(context.Background(), "SQ-0001")
	require.NoError(t, err)
	require.Equal(t, ImportationTotallyApproved, source.ImportationStatus)
	require.Equal(t, "EDA-SPIMR-.YYYY.-.#####", source.NamingSeries)
	require.Empty(t, source.ImportationApprovalRef)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "quotation.variant.create", audit.logs[0].Action)
	require.Equal(t, name, audit.logs[0].EntityID)
}

func TestCreateModificationWithoutReasonKeepsCopiedConditions(t *testing.T) {
	repo := newMemoryQuotationRepo()
	source := approvedQuotation("SQ-0003", "EDA-APIMR-.YYYY.-.#####")
	source.NewConditions = "original conditions"
	repo.add(source)
	svc := newTestService(repo, nil)

	name, err := svc.CreateModification(context.Background(), "SQ-0003", "")
	require.NoError(t, err)
	require.Equal(t, "EDA-APIMR-MD-2026-00001", name)

	created, err := repo.GetQuotation(context.Background(), name)
	require.NoError(t, err)
	require.Equal(t, DefaultAimOfModify, created.AimOfModify)
	require.Equal(t, "original conditions", created.NewConditions)
}

func TestCreateExtension(t *testing.T) {
	repo := newMemoryQuotationRepo()
	repo.add(approvedQuotation("SQ-0002", "EDA-APIMR-.YYYY.-.#####"))
	svc := newTestService(repo, nil)

	valid := date(2026, time.December, 31)
	name, err := svc.CreateExtension(context.Background(), "SQ-0002", &valid)
	require.NoError(t, err)
	require.Equal(t, "EDA-APIMR-EX-2026-00001", name)

	created, err := repo.GetQuotation(context.Background(), name)
	require.NoError(t, err)
	require.Equal(t, "EDA-APIMR-EX-.YYYY.-.#####", created.NamingSeries)
	require.NotNil(t, created.ValidTill)
	require.Equal(t, "2026-12-31", created.ValidTill.Format("2006-01-02"))
	require.Equal(t, ImportationPending, created.ImportationStatus)
	require.Equal(t, DefaultAimOfExtend, created.AimOfExtend)
	require.Equal(t, "SQ-0002", created.ImportationApprovalRef)

	second, err := svc.CreateExtension(context.Background(), "SQ-0002", nil)
	require.NoError(t, err)
	require.Equal(t, "EDA-APIMR-EX-2026-00002", second)
	copied, err := repo.GetQuotation(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, "2026-03-31", copied.ValidTill.Format("2006-01-02"))
}

func TestCreateVariantRequiresSubmittedSource(t *testing.T) {
	repo := newMemoryQuotationRepo()
	draft := approvedQuotation("SQ-0004", "EDA-SPIMR-.YYYY.-.#####")
	draft.DocStatus = DocStatusDraft
	repo.add(draft)
	svc := newTestService(repo, nil)

	_, err := svc.CreateModification(context.Background(), "SQ-0004", "reason")
	require.ErrorIs(t, err, ErrNotSubmitted)
	_, err = svc.CreateExtension(context.Background(), "SQ-0004", nil)
	require.ErrorIs(t, err, ErrNotSubmitted)
	require.Len(t, repo.quotations, 1)
	require.Empty(t, repo.series)
}

func TestCreateVariantMissingSource(t *testing.T) {
	svc := newTestService(newMemoryQuotationRepo(), nil)
	_, err := svc.CreateModification(context.Background(), "SQ-404", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateVariantPropagatesInsertFailure(t *testing.T) {
	repo := newMemoryQuotationRepo()
	repo.add(approvedQuotation("SQ-0005", "EDA-SPIMR-.YYYY.-.#####"))
	repo.failInsert = ErrDuplicate
	svc := newTestService(repo, nil)

	_, err := svc.CreateExtension(context.Background(), "SQ-0005", nil)
	require.ErrorIs(t, err, ErrDuplicate)
	require.Len(t, repo.quotations, 1)
	require.Empty(t, repo.series)
}

func TestSetImportationStatusTotallyApprovedCopiesQty(t *testing.T) {
	repo := newMemoryQuotationRepo()
	q := approvedQuotation("SQ-0010", "EDA-SPIMR-.YYYY.-.#####")
	q.ImportationStatus = ImportationPending
	for i := range q.Items {
		q.Items[i].ActualQty = decimal.Zero
	}
	repo.add(q)
	svc := newTestService(repo, nil)

	updated, err := svc.SetImportationStatus(context.Background(), "SQ-0010", ImportationTotallyApproved, nil)
	require.NoError(t, err)
	require.Equal(t, ImportationTotallyApproved, updated.ImportationStatus)
	for _, item := range updated.Items {
		require.True(t, item.ActualQty.Equal(item.Qty), "row %d", item.Idx)
	}
	require.NotNil(t, updated.ImportationDate)
	require.Equal(t, "2026-10-16", updated.ImportationDate.Format("2006-01-02"))
}

func TestSetImportationStatusPartialApproval(t *testing.T) {
	repo := newMemoryQuotationRepo()
	repo.add(approvedQuotation("SQ-0011", "EDA-SPIMR-.YYYY.-.#####"))
	svc := newTestService(repo, nil)

	updated, err := svc.SetImportationStatus(context.Background(), "SQ-0011", ImportationPartiallyApproved,
		map[int]decimal.Decimal{2: decimal.NewFromInt(15)})
	require.NoError(t, err)
	require.True(t, updated.Items[0].ActualQty.Equal(decimal.NewFromInt(100)))
	require.True(t, updated.Items[1].ActualQty.Equal(decimal.NewFromInt(15)))

	_, err = svc.SetImportationStatus(context.Background(), "SQ-0011", ImportationPartiallyApproved,
		map[int]decimal.Decimal{2: decimal.NewFromInt(41)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetImportationStatus(context.Background(), "SQ-0011", ImportationPartiallyApproved,
		map[int]decimal.Decimal{9: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetImportationStatusRejectsQuantitiesOutsidePartialApproval(t *testing.T) {
	repo := newMemoryQuotationRepo()
	repo.add(approvedQuotation("SQ-0012", "EDA-SPIMR-.YYYY.-.#####"))
	svc := newTestService(repo, nil)

	_, err := svc.SetImportationStatus(context.Background(), "SQ-0012", ImportationTotallyApproved,
		map[int]decimal.Decimal{1: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetImportationStatus(context.Background(), "SQ-0012", ImportationStatus("Approved"), nil)
	require.ErrorIs(t, err, ErrUnknownImportationStatus)
}

func TestSetImportationStatusCancelled(t *testing.T) {
	repo := newMemoryQuotationRepo()
	q := approvedQuotation("SQ-0013", "EDA-SPIMR-.YYYY.-.#####")
	q.DocStatus = DocStatusCancelled
	repo.add(q)
	svc := newTestService(repo, nil)

	_, err := svc.SetImportationStatus(context.Background(), "SQ-0013", ImportationRejected, nil)
	require.ErrorIs(t, err, ErrCancelled)
}
