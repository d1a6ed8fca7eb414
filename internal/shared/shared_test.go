package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDisplayDate(t *testing.T) {
	want := time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)

	got, err := ParseDisplayDate("25/03/2024")
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = ParseDisplayDate("2024-03-25")
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = ParseDisplayDate("03-25-2024")
	require.Error(t, err)
}

func TestDateRoundTrip(t *testing.T) {
	d := time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "05/12/2024", FormatDisplayDate(d))
	require.Equal(t, "2024-12-05", FormatStoreDate(d))

	parsed, err := ParseDisplayDate(FormatDisplayDate(d))
	require.NoError(t, err)
	require.Equal(t, d, parsed)
}

func TestFormatRupiah(t *testing.T) {
	require.Equal(t, "Rp 12.000.000", FormatRupiah(12_000_000))
	require.Equal(t, "Rp 500", FormatRupiah(500))
	require.Equal(t, "Rp 0", FormatRupiah(0))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 45)
	require.Equal(t, 2, p.Page)
	require.Equal(t, 20, p.PerPage)
	require.Equal(t, 45, p.Total)
	require.Equal(t, 3, p.TotalPages)
}
