package reconcile

import (
	"strconv"
	"strings"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/domain"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/textnorm"
)

// Method identifies the cascade tier that produced a match.
type Method string

const (
	MethodExistingReference Method = "existing-reference"
	MethodSlugEqualsID      Method = "slug-equals-id"
	MethodLegacyIDCrossRef  Method = "legacy-id-cross-reference"
	MethodExactName         Method = "exact-name"
	MethodPartialName       Method = "partial-name"
)

// DefaultPartialNameMinLen is the guard for the partial-name tier: the
// longer of the two folded names must exceed this many characters.
const DefaultPartialNameMinLen = 10

// catalog indexes the course side of the match. Slices preserve store
// order so every "first wins" rule is deterministic; on key collisions
// the first course in that order claims the map slot.
type catalog struct {
	courses []*domain.Course

	byID        map[string]*domain.Course
	bySlug      map[string]*domain.Course
	byLegacyRef map[string]*domain.Course
	byFolded    map[string]*domain.Course
}

func newCatalog(courses []*domain.Course) *catalog {
	c := &catalog{
		courses:     courses,
		byID:        make(map[string]*domain.Course, len(courses)),
		bySlug:      make(map[string]*domain.Course, len(courses)),
		byLegacyRef: make(map[string]*domain.Course, len(courses)),
		byFolded:    make(map[string]*domain.Course, len(courses)),
	}

	for _, course := range courses {
		if _, ok := c.byID[course.ID]; !ok {
			c.byID[course.ID] = course
		}
		if slug := strings.TrimSpace(course.Slug); slug != "" {
			if _, ok := c.bySlug[slug]; !ok {
				c.bySlug[slug] = course
			}
		}
		if ref, ok := canonicalID(course.RelatedProductID); ok {
			if _, exists := c.byLegacyRef[ref]; !exists {
				c.byLegacyRef[ref] = course
			}
		}
		if folded := textnorm.Fold(course.Title); folded != "" {
			if _, ok := c.byFolded[folded]; !ok {
				c.byFolded[folded] = course
			}
		}
	}
	return c
}

// match runs the full cascade for one product. The boolean is false
// when no tier produced a course.
func (c *catalog) match(p *domain.Product, partialMin int) (*domain.Course, Method, bool) {
	// 1. stored reference, if it still resolves; a dangling reference
	// falls through to the remaining tiers rather than failing
	if p.RelatedCourseID != "" {
		if course, ok := c.byID[p.RelatedCourseID]; ok {
			return course, MethodExistingReference, true
		}
	}

	// 2. legacy convention: some course slugs are literally the
	// product's id
	if course, ok := c.bySlug[p.ID]; ok {
		return course, MethodSlugEqualsID, true
	}

	// 3. the course side remembers the product
	if pid, ok := canonicalID(p.ID); ok {
		if course, exists := c.byLegacyRef[pid]; exists {
			return course, MethodLegacyIDCrossRef, true
		}
	}

	// 4. normalized names, exact before containment
	folded := textnorm.Fold(p.Name)
	if folded == "" {
		return nil, "", false
	}
	if course, ok := c.byFolded[folded]; ok {
		return course, MethodExactName, true
	}
	if partialMin <= 0 {
		partialMin = DefaultPartialNameMinLen
	}
	for _, course := range c.courses {
		ct := textnorm.Fold(course.Title)
		if ct == "" {
			continue
		}
		if !strings.Contains(folded, ct) && !strings.Contains(ct, folded) {
			continue
		}
		// the guard bounds the LONGER operand; two short names never
		// partial-match even when one contains the other
		if max(len(folded), len(ct)) > partialMin {
			return course, MethodPartialName, true
		}
	}

	return nil, "", false
}

// verifyMatch runs only the deterministic tiers 1-3. existingIDs is the
// resolvable subset of stored references (tier 1).
func (c *catalog) verifyMatch(p *domain.Product, existingIDs map[string]bool) (Method, bool) {
	if p.RelatedCourseID != "" && existingIDs[p.RelatedCourseID] {
		return MethodExistingReference, true
	}
	if _, ok := c.bySlug[p.ID]; ok {
		return MethodSlugEqualsID, true
	}
	if pid, ok := canonicalID(p.ID); ok {
		if _, exists := c.byLegacyRef[pid]; exists {
			return MethodLegacyIDCrossRef, true
		}
	}
	return "", false
}

// canonicalID parses a positive integer id and returns its canonical
// string form.
func canonicalID(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
