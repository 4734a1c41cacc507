package jurisdiction

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/kycivic/parcelpost/internal/domain"
)

// normalizeKey prepares a name for table comparison: leading/trailing
// whitespace is trimmed, internal whitespace runs collapse to single spaces,
// and the result is case-folded. Returns "" for blank input.
func normalizeKey(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return cases.Fold().String(strings.Join(fields, " "))
}

// Resolve looks up the recipient pair for a location.
//
// Precedence, first match wins:
//  1. Grant county: the county's base entry, with the zoning role replaced by
//     the per-city override when the city has a non-empty one
//  2. Any other county match — county mappings are authoritative and never
//     fall through to city-level data
//  3. City match
//  4. The global default pair
//
// In the first three branches, unset roles in the matched entry are backfilled
// from the defaults. An explicitly empty role is a deliberate "no recipient
// configured" marker and survives the merge untouched, so callers can report
// it instead of silently mailing the default address.
func (t *Table) Resolve(city, county string) domain.ResolvedRecipients {
	cityKey := normalizeKey(city)
	countyKey := normalizeKey(county)

	if countyKey != "" {
		if entry, ok := t.counties[countyKey]; ok {
			if countyKey == grantCounty {
				if addr, ok := t.grantZoning[cityKey]; ok {
					entry.Zoning = domain.NewRecipient(addr)
				}
			}
			t.logger.Info("using county-level mapping", "county", countyKey)
			return t.withDefaults(entry, domain.SourceCounty)
		}
	}

	if cityKey != "" {
		if entry, ok := t.cities[cityKey]; ok {
			t.logger.Info("using city-level mapping", "city", cityKey)
			return t.withDefaults(entry, domain.SourceCity)
		}
	}

	t.logger.Info("no mapping found, using defaults", "city", city, "county", county)
	return domain.ResolvedRecipients{
		PVA:    t.defaults.PVA,
		Zoning: t.defaults.Zoning,
		Source: domain.SourceDefault,
	}
}

// withDefaults backfills unset roles from the global defaults. Explicitly
// empty roles pass through unchanged.
func (t *Table) withDefaults(e Entry, source domain.MatchSource) domain.ResolvedRecipients {
	return domain.ResolvedRecipients{
		PVA:    e.PVA.Or(t.defaults.PVA),
		Zoning: e.Zoning.Or(t.defaults.Zoning),
		Source: source,
	}
}
