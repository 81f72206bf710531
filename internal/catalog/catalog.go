// Package catalog looks up series candidates in an external metadata catalog
// and resolves parsed titles against them.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the catalog rejects the API key.
var ErrUnauthorized = errors.New("catalog: unauthorized")

// Candidate is one catalog search result.
type Candidate struct {
	ID            string `json:"id"`
	DisplayTitle  string `json:"display_title"`
	OriginalTitle string `json:"original_title,omitempty"`
	Year          int    `json:"year,omitempty"`
	PosterRef     string `json:"poster_ref,omitempty"`
}

//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks

// Catalog searches an external metadata source for series.
// Results are returned in the source's ranking order.
type Catalog interface {
	SearchCandidates(ctx context.Context, query, language string) ([]Candidate, error)
}

// ResolutionError records a failed catalog lookup. Lookups never abort a
// run; the title is simply left unmatched.
type ResolutionError struct {
	Query string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Query, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
