// Package request holds search options and compiles them into a predicate tree.
package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/srcdex/internal/domain"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/predicate"
)

// MaxTermsPerCategory bounds each filter list.
const MaxTermsPerCategory = 64

// Options are the facets of a search. Every list is optional.
//
// Patterns and Keywords are AND'd term by term; a keyword is satisfied by
// content, restpath or package. Packages and Suffixes are OR groups.
// Paths and Restpaths are AND'd. Categories are AND'd together.
type Options struct {
	Patterns  []string
	Keywords  []string
	Packages  []string
	Paths     []string
	Restpaths []string
	Suffixes  []string

	// Offset skips that many sorted results.
	Offset int
	// Limit caps the window; zero or negative means all.
	Limit int
	// Order defaults to order.Lexical.
	Order order.Mode
}

// Validate checks list sizes, offset and order mode.
func (o *Options) Validate() error {
	lists := map[string][]string{
		"patterns":  o.Patterns,
		"keywords":  o.Keywords,
		"packages":  o.Packages,
		"paths":     o.Paths,
		"restpaths": o.Restpaths,
		"suffixes":  o.Suffixes,
	}
	for name, l := range lists {
		if len(l) > MaxTermsPerCategory {
			return fmt.Errorf("too many %s (max %d): %w", name, MaxTermsPerCategory, domain.ErrInvalidRequest)
		}
	}
	if o.Offset < 0 {
		return fmt.Errorf("offset must not be negative: %w", domain.ErrInvalidRequest)
	}
	if !o.Order.OrDefault().IsValid() {
		return fmt.Errorf("invalid order %q: %w", o.Order, domain.ErrInvalidRequest)
	}
	return nil
}

// IsEmpty reports whether no filter category has a term.
func (o *Options) IsEmpty() bool {
	return predicate.IsAll(Compile(*o))
}

// Compile builds the predicate for o. An empty category contributes no clause;
// when every category is empty the result is predicate.All.
func Compile(o Options) predicate.Node {
	var clauses []predicate.Node

	for _, w := range terms(o.Patterns) {
		clauses = append(clauses, predicate.Match(domdoc.FieldContent, w))
	}

	for _, w := range terms(o.Keywords) {
		clauses = append(clauses, predicate.AnyOf(
			predicate.Match(domdoc.FieldContent, w),
			predicate.Match(domdoc.FieldRestpath, w),
			predicate.Match(domdoc.FieldPackage, w),
		))
	}

	clauses = append(clauses, anyMatch(domdoc.FieldPackage, o.Packages))

	for _, w := range terms(o.Paths) {
		clauses = append(clauses, predicate.Match(domdoc.FieldPath, w))
	}

	for _, w := range terms(o.Restpaths) {
		clauses = append(clauses, predicate.Match(domdoc.FieldRestpath, w))
	}

	clauses = append(clauses, anyMatch(domdoc.FieldSuffix, o.Suffixes))

	return predicate.AllOf(clauses...)
}

// anyMatch ORs a match per term; nil for an empty list.
func anyMatch(field string, words []string) predicate.Node {
	ws := terms(words)
	if len(ws) == 0 {
		return nil
	}
	nodes := make([]predicate.Node, len(ws))
	for i, w := range ws {
		nodes[i] = predicate.Match(field, w)
	}
	return predicate.AnyOf(nodes...)
}

// terms drops blank entries; an empty string would otherwise match everything.
func terms(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w) == "" {
			continue
		}
		out = append(out, w)
	}
	return out
}
