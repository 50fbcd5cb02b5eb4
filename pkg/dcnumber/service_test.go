package dcnumber

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

// mockQuerier emulates the sys_sequences UPSERT semantics in memory.
type mockQuerier struct {
	counts map[string]int64
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counts: make(map[string]int64)}
}

func (q *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	key := args[0].(string)
	if strings.Contains(sql, "GREATEST") {
		seed := int64(args[1].(int))
		if q.counts[key] < seed {
			q.counts[key] = seed
		}
		return mockRow{val: q.counts[key]}
	}
	q.counts[key]++
	return mockRow{val: q.counts[key]}
}

func TestFinancialYear(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-06-15", "2025-26"},
		{"2025-04-01", "2025-26"},
		{"2026-03-31", "2025-26"},
		{"2026-04-01", "2026-27"},
		{"2024-02-10", "2023-24"},
	}
	for _, tc := range cases {
		at, err := time.Parse("2006-01-02", tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, FinancialYear(at), "date %s", tc.date)
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	dc := Format("BRN", 17, "2025-26")
	assert.Equal(t, "BRN/17/2025-26", dc)

	unit, seq, fy, err := Parse(dc)
	require.NoError(t, err)
	assert.Equal(t, "BRN", unit)
	assert.Equal(t, 17, seq)
	assert.Equal(t, "2025-26", fy)
}

func TestParse_Malformed(t *testing.T) {
	for _, dc := range []string{"", "BRN/17", "BRN/17/2025-26/extra", "BRN/zero/2025-26", "BRN/0/2025-26", "/17/2025-26"} {
		_, _, _, err := Parse(dc)
		assert.Error(t, err, "input %q", dc)
	}
}

func TestService_Next_SequencesPerUnitAndYear(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()
	june := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	first, err := svc.Next(ctx, "BRN", june)
	require.NoError(t, err)
	second, err := svc.Next(ctx, "BRN", june)
	require.NoError(t, err)
	assert.Equal(t, "BRN/1/2025-26", first)
	assert.Equal(t, "BRN/2/2025-26", second)

	// A different unit runs its own sequence.
	other, err := svc.Next(ctx, "CTY", june)
	require.NoError(t, err)
	assert.Equal(t, "CTY/1/2025-26", other)

	// A new financial year resets the sequence.
	april, err := svc.Next(ctx, "BRN", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "BRN/1/2026-27", april)
}

func TestService_SeedFromExisting(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	june := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SeedFromExisting(ctx, "BRN", "2025-26", 41))

	next, err := svc.Next(ctx, "BRN", june)
	require.NoError(t, err)
	assert.Equal(t, "BRN/42/2025-26", next)

	// Seeding lower never moves the counter backwards.
	require.NoError(t, svc.SeedFromExisting(ctx, "BRN", "2025-26", 10))
	next, err = svc.Next(ctx, "BRN", june)
	require.NoError(t, err)
	assert.Equal(t, "BRN/43/2025-26", next)
}
