package procurement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVariantSeries(t *testing.T) {
	cases := []struct {
		series string
		kind   VariantKind
		want   string
	}{
		{"EDA-SPIMR-.YYYY.-.#####", VariantModification, "EDA-SPIMR-MD-.YYYY.-.#####"},
		{"EDA-APIMR-.YYYY.-.#####", VariantModification, "EDA-APIMR-MD-.YYYY.-.#####"},
		{"EDA-SPIMR-.YYYY.-.#####", VariantExtension, "EDA-SPIMR-EX-.YYYY.-.#####"},
		{"EDA-APIMR-.YYYY.-.#####", VariantExtension, "EDA-APIMR-EX-.YYYY.-.#####"},
		{"PUR-SQTN-.YYYY.-", VariantModification, "PUR-SQTN-.YYYY.-"},
		{"PUR-SQTN-.YYYY.-", VariantExtension, "PUR-SQTN-.YYYY.-"},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+"/"+tc.series, func(t *testing.T) {
			require.Equal(t, tc.want, VariantSeries(tc.series, tc.kind))
		})
	}
}

func TestIsImportationSeries(t *testing.T) {
	require.True(t, IsImportationSeries("EDA-SPIMR-.YYYY.-.#####"))
	require.True(t, IsImportationSeries("EDA-APIMR-EX-.YYYY.-.#####"))
	require.False(t, IsImportationSeries("PUR-SQTN-.YYYY.-"))
}

func TestMapVariantDoesNotAliasSource(t *testing.T) {
	source := approvedQuotation("SQ-0001", "EDA-SPIMR-.YYYY.-.#####")
	source.Items[0].ID = 41

	newValid := time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)
	target, err := mapVariant(source, extensionTransform(&newValid))
	require.NoError(t, err)

	target.Items[0].ItemName = "changed"
	*target.ValidTill = target.ValidTill.AddDate(1, 0, 0)

	require.Equal(t, "Cisplatin 50mg", source.Items[0].ItemName)
	require.Equal(t, "2026-03-31", source.ValidTill.Format("2006-01-02"))
	require.Equal(t, int64(41), source.Items[0].ID)
	require.Zero(t, target.Items[0].ID)
	require.Empty(t, target.Name)
}

func TestMapVariantModificationKeepsPurposeSeparateFromReason(t *testing.T) {
	source := approvedQuotation("SQ-0001", "EDA-SPIMR-.YYYY.-.#####")
	target, err := mapVariant(source, modificationTransform("Updated packaging"))
	require.NoError(t, err)
	require.Equal(t, DefaultAimOfModify, target.AimOfModify)
	require.Equal(t, "Updated packaging", target.NewConditions)
	require.Equal(t, source.AimOfExtend, target.AimOfExtend)
}

func TestMapVariantRejectsUnsubmitted(t *testing.T) {
	for _, status := range []DocStatus{DocStatusDraft, DocStatusCancelled} {
		source := approvedQuotation("SQ-0009", "EDA-SPIMR-.YYYY.-.#####")
		source.DocStatus = status
		_, err := mapVariant(source, modificationTransform(""))
		require.ErrorIs(t, err, ErrNotSubmitted)
	}
}
