package mappers

import (
	"math"
	"strconv"
	"strings"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/domain"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/meta"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/price"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/wpxml"
)

// LocationRule assigns a site tag when a category's text contains the
// Match substring (case-insensitive). Rules are evaluated in order, so
// the most specific rule must come first.
type LocationRule struct {
	Match string `yaml:"match"`
	Tag   string `yaml:"tag"`
}

// LocationMixed is the tag assigned when a product has categories but
// none of the rules recognize them.
const LocationMixed = "mixed"

// DefaultLocationRules are the compiled-in site rules; a YAML rules
// file can replace them wholesale.
func DefaultLocationRules() []LocationRule {
	return []LocationRule{
		{Match: "showroom palermo", Tag: "palermo"},
		{Match: "showroom devoto", Tag: "devoto"},
		{Match: "palermo", Tag: "palermo"},
		{Match: "devoto", Tag: "devoto"},
		{Match: "online", Tag: "online"},
	}
}

// ProductFromItem maps an exported product post into its persisted
// document.
func ProductFromItem(it wpxml.Item, rules []LocationRule) (domain.Product, error) {
	m := meta.Extract(it.Meta)
	cats := meta.Categories(it.Category)

	p := domain.Product{
		ID:          strings.TrimSpace(it.ID),
		Name:        mapTitle(it.Title, m["title"]),
		Slug:        strings.TrimSpace(it.Slug),
		Status:      mapStatus(it.Status),
		Price:       mapPrice(m),
		Description: strings.TrimSpace(it.Content),
		Categories:  cats,
		Location:    locate(cats, rules),
		CreatedAt:   parseDate(it.Date),
		UpdatedAt:   parseDate(it.Modified),
	}

	// legacy manual cross-reference, if the editors ever filled it in
	if id, ok := meta.Number(m["curso_relacionado"]); ok && id > 0 {
		p.RelatedCourseID = strconv.FormatInt(int64(id), 10)
	}

	return p, nil
}

// mapPrice applies the price priority chain: explicit numeric local
// price, then a numeric extraction from the free-text price, then zero.
func mapPrice(m meta.Meta) int64 {
	if v, ok := meta.Number(m["precio_local"]); ok && v > 0 {
		return int64(math.Round(v))
	}
	return price.ParseAmount(m["precio"])
}

// locate resolves the site tag for a product's categories. No
// categories means no tag; categories that match no rule get the
// generic mixed tag.
func locate(cats []string, rules []LocationRule) string {
	if len(cats) == 0 {
		return ""
	}
	for _, r := range rules {
		needle := strings.ToLower(strings.TrimSpace(r.Match))
		if needle == "" {
			continue
		}
		for _, c := range cats {
			if strings.Contains(strings.ToLower(c), needle) {
				return r.Tag
			}
		}
	}
	return LocationMixed
}
