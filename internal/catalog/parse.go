// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/bib0x/dv/pkg/cueutil"
)

// SchemaDefinition is the root definition in catalog_schema.cue.
const SchemaDefinition = "#Catalog"

//go:embed catalog_schema.cue
var catalogSchema []byte

// ErrCatalogParse is the sentinel error wrapped by ParseError.
var ErrCatalogParse = errors.New("invalid environment catalog")

// ParseError reports output that is not a structurally valid catalog.
type ParseError struct {
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrCatalogParse, e.Err)
}

// Unwrap returns ErrCatalogParse and the underlying validation error.
func (e *ParseError) Unwrap() []error { return []error{ErrCatalogParse, e.Err} }

// Parse decodes `nix flake show --json` output. The document must be a
// strict JSON object with a devShells member; its absence is an error and
// never an empty catalog.
func Parse(data []byte) (*Catalog, error) {
	result, err := cueutil.ParseAndDecode[Catalog](
		catalogSchema,
		data,
		SchemaDefinition,
		cueutil.WithFilename("flake show output"),
		cueutil.WithJSON(),
		cueutil.WithRequiredFields("devShells"),
	)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	cat := result.Value
	if cat.DevShells == nil {
		cat.DevShells = map[string]map[string]Shell{}
	}
	return cat, nil
}
