package procurement

import (
	"fmt"
	"strings"
	"time"
)

// VariantKind names the derived document flavours of an importation approval.
type VariantKind string

const (
	VariantModification VariantKind = "Modification"
	VariantExtension    VariantKind = "Extension"
)

const (
	seriesSPIMR = "EDA-SPIMR-"
	seriesAPIMR = "EDA-APIMR-"

	// DefaultAimOfModify is the purpose recorded on every modification (EDA-MD).
	DefaultAimOfModify = "Change data and conditions"
	// DefaultAimOfExtend is the purpose recorded on every extension (EDA-EX).
	DefaultAimOfExtend = "Others"
)

var variantMarkers = map[VariantKind]string{
	VariantModification: "MD-",
	VariantExtension:    "EX-",
}

// IsImportationSeries reports whether a naming series belongs to the EDA
// importation approval process.
func IsImportationSeries(series string) bool {
	return strings.Contains(series, strings.TrimSuffix(seriesSPIMR, "-")) ||
		strings.Contains(series, strings.TrimSuffix(seriesAPIMR, "-"))
}

// VariantSeries derives the naming series of a variant. SPIMR is checked before
// APIMR; a series carrying neither is returned unchanged.
func VariantSeries(series string, kind VariantKind) string {
	marker, ok := variantMarkers[kind]
	if !ok {
		return series
	}
	for _, prefix := range []string{seriesSPIMR, seriesAPIMR} {
		if strings.Contains(series, prefix) {
			return strings.ReplaceAll(series, prefix, prefix+marker)
		}
	}
	return series
}

// variantTransform applies the kind-specific overrides on a copied quotation.
type variantTransform struct {
	kind  VariantKind
	apply func(target *SupplierQuotation)
}

func modificationTransform(reason string) variantTransform {
	return variantTransform{
		kind: VariantModification,
		apply: func(target *SupplierQuotation) {
			target.AimOfModify = DefaultAimOfModify
			if reason != "" {
				target.NewConditions = reason
			}
		},
	}
}

func extensionTransform(validDate *time.Time) variantTransform {
	return variantTransform{
		kind: VariantExtension,
		apply: func(target *SupplierQuotation) {
			target.AimOfExtend = DefaultAimOfExtend
			if validDate != nil {
				target.ValidTill = cloneTime(validDate)
			}
		},
	}
}

// mapVariant copies a submitted quotation into a new draft and applies the
// shared and kind-specific overrides. The source is left untouched.
func mapVariant(source SupplierQuotation, transform variantTransform) (SupplierQuotation, error) {
	if source.DocStatus != DocStatusSubmitted {
		return SupplierQuotation{}, fmt.Errorf("%w: %s has docstatus %d", ErrNotSubmitted, source.Name, source.DocStatus)
	}
	target := source.Clone()
	target.Name = ""
	target.DocStatus = DocStatusDraft
	for i := range target.Items {
		target.Items[i].ID = 0
	}

	target.ImportationStatus = ImportationPending
	target.NamingSeries = VariantSeries(source.NamingSeries, transform.kind)
	target.ImportationApprovalRef = source.Name
	transform.apply(&target)
	return target, nil
}
