// Package jurisdiction maps property locations to the government offices
// that handle records requests for them.
//
// Two recipient roles exist per location: the county Property Valuation
// Administrator (PVA) and the local zoning office. Addresses come from a
// static table assembled once at startup, optionally extended by a CSV
// overlay file. The table is read-only after construction.
package jurisdiction

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/kycivic/parcelpost/internal/domain"
)

// grantCounty is the one county whose zoning recipient varies by city.
// Incorporated cities inside it run their own zoning boards, so the county
// entry alone cannot name a single zoning office.
const grantCounty = "grant"

// Entry holds the recipient addresses configured for a single city or county.
// Either field may be unset (defaults backfill it) or explicitly empty
// (deliberate "no recipient configured" marker, never backfilled).
type Entry struct {
	PVA    domain.Recipient
	Zoning domain.Recipient
}

// Defaults are the global fallback addresses used when no table entry
// supplies a recipient.
type Defaults struct {
	PVA    string
	Zoning string
}

// Table resolves city/county names to recipient addresses.
type Table struct {
	cities      map[string]Entry
	counties    map[string]Entry
	grantZoning map[string]string // normalized city -> zoning address override
	defaults    Entry
	logger      *slog.Logger
}

// New builds a Table seeded with the built-in mappings and the given
// defaults. Keys are normalized at construction so lookups are insensitive
// to casing and internal whitespace.
func New(defaults Defaults, logger *slog.Logger) *Table {
	t := &Table{
		cities:      make(map[string]Entry),
		counties:    make(map[string]Entry),
		grantZoning: make(map[string]string),
		defaults: Entry{
			PVA:    domain.NewRecipient(defaults.PVA),
			Zoning: domain.NewRecipient(defaults.Zoning),
		},
		logger: logger,
	}

	t.setCity("Springfield", Entry{
		PVA:    domain.NewRecipient("pva@springfield.gov"),
		Zoning: domain.NewRecipient("zoning@springfield.gov"),
	})
	t.setCity("Metropolis", Entry{
		PVA:    domain.NewRecipient("pva@metropolis.gov"),
		Zoning: domain.NewRecipient("zoning@metropolis.gov"),
	})

	// County mappings are hard-locked: a county entry always wins over any
	// city-level data.
	t.setCounty("Carroll", Entry{
		PVA:    domain.NewRecipient("bethany.petry@ky.gov"),
		Zoning: domain.NewRecipient("brianmumphrey@carrolltonky.net"),
	})

	// Grant county: unincorporated areas have no zoning office at all, so the
	// base entry carries an explicitly empty zoning recipient. Incorporated
	// cities override it below.
	t.setCounty("Grant", Entry{
		PVA:    domain.NewRecipient("pva@grantcounty.ky.gov"),
		Zoning: domain.EmptyRecipient(),
	})
	t.setGrantZoning("Williamstown", "zoning@wtown.org")
	t.setGrantZoning("Dry Ridge", "planning@dryridgeky.gov")
	t.setGrantZoning("Crittenden", "cityofcrittenden@fuse.net")
	t.setGrantZoning("Corinth", "") // no municipal zoning board; falls back to the county entry

	return t
}

func (t *Table) setCity(name string, e Entry) {
	if key := normalizeKey(name); key != "" {
		t.cities[key] = e
	}
}

func (t *Table) setCounty(name string, e Entry) {
	if key := normalizeKey(name); key != "" {
		t.counties[key] = e
	}
}

// setGrantZoning records a per-city zoning override for Grant county.
// Empty addresses are treated as absent.
func (t *Table) setGrantZoning(city, addr string) {
	if addr == "" {
		return
	}
	if key := normalizeKey(city); key != "" {
		t.grantZoning[key] = addr
	}
}

// =============================================================================
// CSV Overlay
// =============================================================================

// LoadOverlayCSV merges mapping rows from a CSV file into the table.
//
// Expected columns: kind,key,pva_email,zoning_email where kind is "city" or
// "county". A row replaces the entry for its key; blank email cells leave the
// corresponding role unset. A missing file and malformed rows are logged and
// skipped, never fatal — the built-in table keeps serving.
//
// Call this during startup only; the table is not safe for concurrent
// mutation once requests are being served.
func (t *Table) LoadOverlayCSV(path string) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Info("mapping overlay file not found, using built-in table", "path", path)
		} else {
			t.logger.Error("failed to open mapping overlay", "path", path, "error", err)
		}
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows may omit trailing cells

	loaded := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.logger.Warn("skipping malformed overlay row", "path", path, "error", err)
			continue
		}
		if t.applyOverlayRow(row) {
			loaded++
		}
	}

	t.logger.Info("mapping overlay loaded", "path", path, "rows", loaded)
}

// applyOverlayRow merges a single CSV row, reporting whether it was used.
func (t *Table) applyOverlayRow(row []string) bool {
	if len(row) < 2 {
		return false
	}

	kind := strings.ToLower(strings.TrimSpace(row[0]))
	key := strings.TrimSpace(row[1])
	if key == "" {
		return false
	}

	entry := Entry{}
	if len(row) > 2 {
		if pva := strings.TrimSpace(row[2]); pva != "" {
			entry.PVA = domain.NewRecipient(pva)
		}
	}
	if len(row) > 3 {
		if zoning := strings.TrimSpace(row[3]); zoning != "" {
			entry.Zoning = domain.NewRecipient(zoning)
		}
	}
	if entry.PVA.IsUnset() && entry.Zoning.IsUnset() {
		return false
	}

	switch kind {
	case "city":
		t.setCity(key, entry)
	case "county":
		t.setCounty(key, entry)
	default:
		return false
	}
	return true
}
