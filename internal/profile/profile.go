// Package profile describes bank-specific CSV export formats. Ingestion is
// parameterized by a Profile so new bank exports only need a new profile,
// not a new parser.
package profile

import (
	"fmt"
)

// Columns maps logical transaction fields to CSV header names.
type Columns struct {
	Date           string
	Amount         string
	Description    string
	Merchant       string
	Category       string
	CategoryParent string
}

// Profile holds the parsing conventions of one bank's CSV export.
type Profile struct {
	Name       string
	Delimiter  rune
	DateLayout string
	Columns    Columns

	// InternalTransferLabels are the raw parent-category labels that mark
	// money moving between the user's own accounts. Transactions carrying
	// one of them are excluded from every aggregate.
	InternalTransferLabels []string
}

// IsInternalTransfer reports whether the raw parent-category label denotes
// an internal transfer under this profile.
func (p *Profile) IsInternalTransfer(label string) bool {
	for _, l := range p.InternalTransferLabels {
		if label == l {
			return true
		}
	}
	return false
}

// Boursorama is the BoursoBank export profile: semicolon-delimited,
// ISO dates, decimal comma.
func Boursorama() *Profile {
	return &Profile{
		Name:       "boursorama",
		Delimiter:  ';',
		DateLayout: "2006-01-02",
		Columns: Columns{
			Date:           "dateOp",
			Amount:         "amount",
			Description:    "label",
			Merchant:       "supplierFound",
			Category:       "category",
			CategoryParent: "categoryParent",
		},
		InternalTransferLabels: []string{
			"Mouvements internes débiteurs",
			"Mouvements internes créditeurs",
		},
	}
}

var registry = map[string]func() *Profile{
	"boursorama": Boursorama,
}

// Lookup returns the profile registered under name.
func Lookup(name string) (*Profile, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown bank profile: %s", name)
	}
	return factory(), nil
}

// Register adds a profile factory under a name. Later registrations replace
// earlier ones, which lets configuration override the builtins.
func Register(name string, factory func() *Profile) {
	registry[name] = factory
}
