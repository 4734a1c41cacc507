package jurisdiction

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kycivic/parcelpost/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDefaults() Defaults {
	return Defaults{PVA: "pva@example.com", Zoning: "zoning@example.com"}
}

func TestResolve_CountyBeatsCity(t *testing.T) {
	table := New(testDefaults(), testLogger())

	// Springfield has its own city entry, but a matching county must win
	// regardless of which fields were supplied.
	got := table.Resolve("Springfield", "Carroll")

	assert.Equal(t, domain.SourceCounty, got.Source)
	pva, ok := got.PVA.Address()
	require.True(t, ok)
	assert.Equal(t, "bethany.petry@ky.gov", pva)
	zoning, ok := got.Zoning.Address()
	require.True(t, ok)
	assert.Equal(t, "brianmumphrey@carrolltonky.net", zoning)
}

func TestResolve_KeyNormalization(t *testing.T) {
	table := New(testDefaults(), testLogger())

	tests := []struct {
		name   string
		city   string
		county string
		source domain.MatchSource
	}{
		{"mixed case county", "", "cArRoLl", domain.SourceCounty},
		{"padded county", "", "  Carroll  ", domain.SourceCounty},
		{"collapsed whitespace city", "  sprinGfield ", "", domain.SourceCity},
		{"grant with internal runs", "dry   ridge", "GRANT", domain.SourceCounty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Resolve(tt.city, tt.county)
			assert.Equal(t, tt.source, got.Source)
		})
	}
}

func TestResolve_GrantCityOverride(t *testing.T) {
	table := New(testDefaults(), testLogger())

	got := table.Resolve("Dry Ridge", "Grant")

	assert.Equal(t, domain.SourceCounty, got.Source)
	zoning, ok := got.Zoning.Address()
	require.True(t, ok)
	assert.Equal(t, "planning@dryridgeky.gov", zoning)

	// The county PVA is untouched by the zoning override.
	pva, ok := got.PVA.Address()
	require.True(t, ok)
	assert.Equal(t, "pva@grantcounty.ky.gov", pva)
}

func TestResolve_GrantWithoutOverrideKeepsEmptyZoning(t *testing.T) {
	table := New(testDefaults(), testLogger())

	tests := []struct {
		name string
		city string
	}{
		{"unknown city", "Mason"},
		{"no city at all", ""},
		{"city with empty override entry", "Corinth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Resolve(tt.city, "Grant")

			assert.Equal(t, domain.SourceCounty, got.Source)
			// The explicitly empty zoning marker must survive: no backfill
			// from defaults, so the caller reports "not configured" instead
			// of mailing the default address.
			assert.True(t, got.Zoning.IsEmpty())
			_, ok := got.Zoning.Address()
			assert.False(t, ok)
		})
	}
}

func TestResolve_CityMatchBackfilledFromDefaults(t *testing.T) {
	table := New(testDefaults(), testLogger())
	// Overlay a city entry that only names a PVA; zoning stays unset.
	require.True(t, table.applyOverlayRow([]string{"city", "Harrodsburg", "pva@mercercounty.ky.gov"}))

	got := table.Resolve("Harrodsburg", "")

	assert.Equal(t, domain.SourceCity, got.Source)
	pva, ok := got.PVA.Address()
	require.True(t, ok)
	assert.Equal(t, "pva@mercercounty.ky.gov", pva)

	zoning, ok := got.Zoning.Address()
	require.True(t, ok)
	assert.Equal(t, "zoning@example.com", zoning)
}

func TestResolve_NoMatchReturnsDefaults(t *testing.T) {
	table := New(testDefaults(), testLogger())

	tests := []struct {
		name   string
		city   string
		county string
	}{
		{"nothing supplied", "", ""},
		{"unknown city", "Gotham", ""},
		{"unknown county", "", "Nowhere"},
		{"unknown both", "Gotham", "Nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Resolve(tt.city, tt.county)

			assert.Equal(t, domain.SourceDefault, got.Source)
			pva, _ := got.PVA.Address()
			zoning, _ := got.Zoning.Address()
			assert.Equal(t, "pva@example.com", pva)
			assert.Equal(t, "zoning@example.com", zoning)
		})
	}
}

func TestResolve_UnknownCountyDoesNotBlockCityMatch(t *testing.T) {
	table := New(testDefaults(), testLogger())

	// A county value with no table entry falls through to the city lookup.
	got := table.Resolve("Metropolis", "Sangamon")

	assert.Equal(t, domain.SourceCity, got.Source)
	pva, _ := got.PVA.Address()
	assert.Equal(t, "pva@metropolis.gov", pva)
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Carroll", "carroll"},
		{"  Dry   Ridge  ", "dry ridge"},
		{"", ""},
		{"   ", ""},
		{"UPPER", "upper"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeKey(tt.in), "normalizeKey(%q)", tt.in)
	}
}
