// Package species derives the directory label used to group assemblies.
package species

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/ncbisort/internal/manifest"
)

const (
	NameField  = "organism.organismName"
	TaxIDField = "organism.taxId"
)

// ErrMissingField is returned when a row lacks a field the label needs.
var ErrMissingField = errors.New("missing required field")

// Normalize rewrites an organism name for use as a path component.
// The replacements run in a fixed order. The "__" collapse is a single
// left-to-right pass and happens before "/" is rewritten, so "___" becomes
// "__" and "_/" becomes "__".
func Normalize(name string) string {
	s := strings.ReplaceAll(name, ".", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "__", "_")
	return strings.ReplaceAll(s, "/", "_")
}

// Label returns "<normalized organism name>.<taxId>" for a flattened row.
func Label(row *manifest.Record) (string, error) {
	name := row.Value(NameField)
	if name.IsNull() {
		return "", fmt.Errorf("%w: %s", ErrMissingField, NameField)
	}
	taxID := row.Value(TaxIDField)
	if taxID.IsNull() {
		return "", fmt.Errorf("%w: %s", ErrMissingField, TaxIDField)
	}
	return Normalize(name.String()) + "." + taxID.String(), nil
}
