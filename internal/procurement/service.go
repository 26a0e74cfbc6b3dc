package procurement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/onco-erp/onco/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetQuotation(ctx context.Context, name string) (SupplierQuotation, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates supplier quotation variants and importation decisions.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
	clock  func() time.Time
}

// NewService constructs procurement service. audit may be nil.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, clock: time.Now}
}

// CreateModification creates a draft modification (EDA-MD) of a submitted
// quotation and returns its name. A non-empty reason is stored as the new
// conditions of the modification.
func (s *Service) CreateModification(ctx context.Context, sourceName, reason string) (string, error) {
	return s.createVariant(ctx, sourceName, modificationTransform(reason))
}

// CreateExtension creates a draft extension (EDA-EX) of a submitted quotation and
// returns its name. A non-nil validDate replaces the copied validity.
func (s *Service) CreateExtension(ctx context.Context, sourceName string, validDate *time.Time) (string, error) {
	return s.createVariant(ctx, sourceName, extensionTransform(validDate))
}

func (s *Service) createVariant(ctx context.Context, sourceName string, transform variantTransform) (string, error) {
	if sourceName == "" {
		return "", fmt.Errorf("%w: source name required", ErrValidation)
	}
	source, err := s.repo.GetQuotation(ctx, sourceName)
	if err != nil {
		return "", err
	}
	target, err := mapVariant(source, transform)
	if err != nil {
		return "", err
	}
	key, err := ParseSeries(target.NamingSeries, s.clock())
	if err != nil {
		return "", err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		next, err := tx.NextSeriesValue(ctx, key.Prefix)
		if err != nil {
			return fmt.Errorf("next series value: %w", err)
		}
		target.Name = key.Format(next)
		return tx.InsertQuotation(ctx, target)
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("supplier quotation variant created",
		slog.String("kind", string(transform.kind)),
		slog.String("source", source.Name),
		slog.String("name", target.Name),
		slog.String("naming_series", target.NamingSeries),
	)
	s.recordAudit(ctx, "quotation.variant.create", target.Name, map[string]any{
		"kind":   string(transform.kind),
		"source": source.Name,
	})
	return target.Name, nil
}

// GetQuotation returns a quotation with its lines.
func (s *Service) GetQuotation(ctx context.Context, name string) (SupplierQuotation, error) {
	return s.repo.GetQuotation(ctx, name)
}

// SetImportationStatus records the authority decision on a quotation. Actual
// quantities keyed by line idx are only accepted for partial approvals; a total
// approval copies every quoted quantity into the approved quantity.
func (s *Service) SetImportationStatus(ctx context.Context, name string, status ImportationStatus, actualQty map[int]decimal.Decimal) (SupplierQuotation, error) {
	if _, err := ParseImportationStatus(string(status)); err != nil {
		return SupplierQuotation{}, fmt.Errorf("%w: %q", err, status)
	}
	if len(actualQty) > 0 && status != ImportationPartiallyApproved {
		return SupplierQuotation{}, fmt.Errorf("%w: quantities can only be edited on partial approval", ErrValidation)
	}

	var updated SupplierQuotation
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		q, err := tx.GetQuotationForUpdate(ctx, name)
		if err != nil {
			return err
		}
		if q.DocStatus == DocStatusCancelled {
			return fmt.Errorf("%w: %s", ErrCancelled, name)
		}
		if err := applyImportationStatus(&q, status, actualQty, s.clock()); err != nil {
			return err
		}
		if err := tx.UpdateImportation(ctx, q); err != nil {
			return err
		}
		updated = q
		return nil
	})
	if err != nil {
		return SupplierQuotation{}, err
	}
	s.recordAudit(ctx, "quotation.importation.status", name, map[string]any{"status": string(status)})
	return updated, nil
}

func applyImportationStatus(q *SupplierQuotation, status ImportationStatus, actualQty map[int]decimal.Decimal, now time.Time) error {
	switch status {
	case ImportationTotallyApproved:
		for i := range q.Items {
			q.Items[i].ActualQty = q.Items[i].Qty
		}
	case ImportationPartiallyApproved:
		byIdx := make(map[int]int, len(q.Items))
		for i, item := range q.Items {
			byIdx[item.Idx] = i
		}
		for idx, qty := range actualQty {
			i, ok := byIdx[idx]
			if !ok {
				return fmt.Errorf("%w: no item at row %d", ErrValidation, idx)
			}
			if qty.IsNegative() || qty.GreaterThan(q.Items[i].Qty) {
				return fmt.Errorf("%w: row %d approved quantity %s outside 0..%s", ErrValidation, idx, qty, q.Items[i].Qty)
			}
			q.Items[i].ActualQty = qty
		}
	}
	q.ImportationStatus = status
	if status == ImportationPending {
		q.ImportationDate = nil
	} else {
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		q.ImportationDate = &day
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action, name string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		Actor:    shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "supplier_quotation",
		EntityID: name,
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record", slog.String("action", action), slog.String("name", name), slog.Any("error", err))
	}
}
