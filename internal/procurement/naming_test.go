package procurement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseSeries(t *testing.T) {
	at := time.Date(2026, time.March, 7, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		series string
		prefix string
		digits int
	}{
		{"EDA-SPIMR-.YYYY.-.#####", "EDA-SPIMR-2026-", 5},
		{"EDA-APIMR-MD-.YY.-.MM.-.####", "EDA-APIMR-MD-26-03-", 4},
		{"SQ-.DD.-.###", "SQ-07-", 3},
		{"PUR-SQTN-.YYYY.-", "PUR-SQTN-2026-", 5},
	}
	for _, tc := range cases {
		key, err := ParseSeries(tc.series, at)
		require.NoError(t, err, tc.series)
		require.Equal(t, tc.prefix, key.Prefix, tc.series)
		require.Equal(t, tc.digits, key.Digits, tc.series)
	}
}

func TestParseSeriesRejectsEmpty(t *testing.T) {
	_, err := ParseSeries("  ", time.Now())
	require.ErrorIs(t, err, ErrValidation)
}

func TestSeriesKeyFormat(t *testing.T) {
	key := SeriesKey{Prefix: "EDA-SPIMR-MD-2026-", Digits: 5}
	require.Equal(t, "EDA-SPIMR-MD-2026-00042", key.Format(42))
	require.Equal(t, "EDA-SPIMR-MD-2026-123456", key.Format(123456))
}
