// Package sku normalizes raw SKU strings and resolves variant, bundle and
// legacy SKUs to their canonical forms. It is pure string handling with no
// knowledge of BOM or stock state.
package sku

import (
	"strings"

	"github.com/opsdash/backend-go/internal/domain"
)

// variantSuffixes mark SKUs that share the BOM of their base SKU
// (personalization variants). Checked in priority order; only the first
// match is stripped, never recursively.
var variantSuffixes = []string{
	"-PERS",
	"-CUSTOM",
	"-ENGRAVED",
}

// bundleSuffixes mark SKUs with a different BOM but the same product family,
// used for sales grouping.
var bundleSuffixes = []string{
	"-BUNDLE",
	"-2PK",
	"-3PK",
	"-SET",
}

// MappingTable is an in-memory old SKU to current SKU lookup, keyed by
// normalized old SKU.
type MappingTable map[string]string

// NewMappingTable builds a MappingTable from stored SKU mappings.
func NewMappingTable(mappings []domain.SKUMapping) MappingTable {
	table := make(MappingTable, len(mappings))
	for _, m := range mappings {
		old := Normalize(m.OldSKU)
		if old == "" {
			continue
		}
		table[old] = Normalize(m.CurrentSKU)
	}
	return table
}

// Normalize uppercases and trims a raw SKU string.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ResolveToBaseSKU strips at most one variant suffix from the normalized
// SKU. SKUs without a variant suffix, and SKUs whose remainder would still
// carry a variant suffix, are returned unchanged. Empty input is returned
// as-is.
func ResolveToBaseSKU(raw string) string {
	s := Normalize(raw)
	if s == "" {
		return raw
	}
	return stripOne(s, variantSuffixes)
}

// ResolveToDisplayGroupBase strips a bundle suffix, if present, before
// stripping a variant suffix. The bundle check runs first so that a bundled
// variant collapses to the same display group as its base product.
func ResolveToDisplayGroupBase(raw string) string {
	s := Normalize(raw)
	if s == "" {
		return raw
	}
	return stripOne(stripOne(s, bundleSuffixes), variantSuffixes)
}

// IsVariant reports whether the SKU carries a variant suffix.
func IsVariant(raw string) bool {
	return hasAnySuffix(Normalize(raw), variantSuffixes)
}

// HasBundleSuffix reports whether the SKU carries a bundle suffix.
func HasBundleSuffix(raw string) bool {
	return hasAnySuffix(Normalize(raw), bundleSuffixes)
}

// IsAnyVariant reports whether the SKU carries either a variant or a bundle
// suffix.
func IsAnyVariant(raw string) bool {
	return IsVariant(raw) || HasBundleSuffix(raw)
}

// ResolveLegacy maps a legacy SKU to its current SKU via the mapping table.
// Lookup is single-hop: the result is never resolved again. Unmapped SKUs
// are returned unchanged.
func ResolveLegacy(raw string, table MappingTable) string {
	s := Normalize(raw)
	if s == "" {
		return raw
	}
	if current, ok := table[s]; ok && current != "" {
		return current
	}
	return s
}

// stripOne removes the first matching suffix. The result must be a fixed
// point: when the remainder still ends in another strippable suffix the
// input is returned unchanged, so resolving twice equals resolving once.
func stripOne(s string, suffixes []string) string {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			base := strings.TrimSuffix(s, suffix)
			if hasAnySuffix(base, suffixes) {
				return s
			}
			return base
		}
	}
	return s
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) && len(s) > len(suffix) {
			return true
		}
	}
	return false
}
