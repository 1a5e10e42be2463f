// Package reconcile links the independently migrated product and
// course catalogs after the fact. The source system recorded the
// relationship inconsistently or not at all, so each product goes
// through a confidence-ordered cascade of matching tiers; the write
// phase then maintains both sides of the denormalized reference.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/domain"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/store"
)

// Match is one resolved product/course pair.
type Match struct {
	Product *domain.Product
	Course  *domain.Course
	Method  Method

	// NeedsUpdate is true when the product does not yet store the
	// matched course id.
	NeedsUpdate bool
}

// Summary is the end-of-run report. Absence of a match is a normal
// outcome and lands in NoMatch, not in Errors.
type Summary struct {
	Products     int
	Courses      int
	DecodeErrors int

	ByMethod    map[Method]int
	NoMatch     []string
	NeedsUpdate int

	Executed        bool
	ProductsUpdated int
	CoursesUpdated  int
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"products=%d courses=%d matched=%d no-match=%d needs-update=%d executed=%t products-updated=%d courses-updated=%d decode-errors=%d",
		s.Products, s.Courses, s.matched(), len(s.NoMatch), s.NeedsUpdate,
		s.Executed, s.ProductsUpdated, s.CoursesUpdated, s.DecodeErrors,
	)
}

func (s Summary) matched() int {
	n := 0
	for _, v := range s.ByMethod {
		n += v
	}
	return n
}

// Engine reconciles the two collections. Execute is resolved once at
// construction; in dry-run mode the full cascade runs but no write
// reaches the store.
type Engine struct {
	Products store.Collection
	Courses  store.Collection

	Execute           bool
	PartialNameMinLen int
	BatchSize         int
	Log               *slog.Logger
}

// Run executes the cascade for every published product and, in execute
// mode, writes both sides of the reference. The matches are returned
// for the audit report.
func (e *Engine) Run(ctx context.Context) (Summary, []Match, error) {
	log := e.logger()

	products, courses, sum, err := e.load(ctx)
	if err != nil {
		return Summary{}, nil, err
	}

	cat := newCatalog(courses)
	var matches []Match

	for _, p := range products {
		course, method, ok := cat.match(p, e.PartialNameMinLen)
		if !ok {
			sum.NoMatch = append(sum.NoMatch, p.ID)
			continue
		}

		m := Match{
			Product:     p,
			Course:      course,
			Method:      method,
			NeedsUpdate: p.RelatedCourseID == "" || p.RelatedCourseID != course.ID,
		}
		if m.NeedsUpdate {
			sum.NeedsUpdate++
		}
		sum.ByMethod[method]++
		matches = append(matches, m)

		log.Debug("matched", "product", p.ID, "course", course.ID, "method", string(method))
	}

	if e.Execute {
		updatedP, updatedC, err := e.write(ctx, matches)
		sum.ProductsUpdated = updatedP
		sum.CoursesUpdated = updatedC
		sum.Executed = true
		if err != nil {
			return sum, matches, err
		}
	}

	return sum, matches, nil
}

// Verify reruns only the deterministic tiers 1-3, read-only, for audit
// reporting. Fuzzy name tiers are deliberately excluded.
func (e *Engine) Verify(ctx context.Context) (Summary, error) {
	products, courses, sum, err := e.load(ctx)
	if err != nil {
		return Summary{}, err
	}

	// resolve stored references in chunked batch reads
	var refIDs []string
	seen := map[string]bool{}
	for _, p := range products {
		if p.RelatedCourseID != "" && !seen[p.RelatedCourseID] {
			seen[p.RelatedCourseID] = true
			refIDs = append(refIDs, p.RelatedCourseID)
		}
	}
	existing := map[string]bool{}
	if len(refIDs) > 0 {
		found, err := e.Courses.BatchGet(ctx, refIDs)
		if err != nil {
			return Summary{}, fmt.Errorf("reconcile: verify references: %w", err)
		}
		for id := range found {
			existing[id] = true
		}
	}

	cat := newCatalog(courses)
	for _, p := range products {
		method, ok := cat.verifyMatch(p, existing)
		if !ok {
			sum.NoMatch = append(sum.NoMatch, p.ID)
			continue
		}
		sum.ByMethod[method]++
	}
	return sum, nil
}

// load reads the published documents of both collections. Individual
// documents that fail to decode are counted and skipped; the run goes
// on without them.
func (e *Engine) load(ctx context.Context) ([]*domain.Product, []*domain.Course, Summary, error) {
	log := e.logger()
	sum := Summary{ByMethod: map[Method]int{}}

	prodDocs, err := e.Products.Query(ctx, "status", domain.StatusPublish)
	if err != nil {
		return nil, nil, sum, fmt.Errorf("reconcile: load products: %w", err)
	}
	products := make([]*domain.Product, 0, len(prodDocs))
	for _, d := range prodDocs {
		p, err := domain.DecodeProduct(d.Data)
		if err != nil {
			sum.DecodeErrors++
			log.Error("undecodable product document", "id", d.ID, "error", err)
			continue
		}
		products = append(products, &p)
	}

	courseDocs, err := e.Courses.Query(ctx, "status", domain.StatusPublish)
	if err != nil {
		return nil, nil, sum, fmt.Errorf("reconcile: load courses: %w", err)
	}
	courses := make([]*domain.Course, 0, len(courseDocs))
	for _, d := range courseDocs {
		c, err := domain.DecodeCourse(d.Data)
		if err != nil {
			sum.DecodeErrors++
			log.Error("undecodable course document", "id", d.ID, "error", err)
			continue
		}
		courses = append(courses, &c)
	}

	sum.Products = len(products)
	sum.Courses = len(courses)
	return products, courses, sum, nil
}

// write commits both sides of the reference: products first, then
// courses grouped by distinct course id where the first claiming
// product in match order wins.
func (e *Engine) write(ctx context.Context, matches []Match) (productsUpdated, coursesUpdated int, err error) {
	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	pb := e.Products.Batch()
	for _, m := range matches {
		if !m.NeedsUpdate {
			continue
		}
		m.Product.RelatedCourseID = m.Course.ID
		if err := pb.Set(m.Product.ID, m.Product); err != nil {
			return productsUpdated, 0, fmt.Errorf("reconcile: queue product update: %w", err)
		}
		productsUpdated++
		if pb.Len() >= batchSize {
			if err := pb.Flush(ctx); err != nil {
				return productsUpdated, 0, fmt.Errorf("reconcile: flush product updates: %w", err)
			}
		}
	}
	if err := pb.Flush(ctx); err != nil {
		return productsUpdated, 0, fmt.Errorf("reconcile: flush product updates: %w", err)
	}

	claimed := map[string]*Match{}
	for i := range matches {
		m := &matches[i]
		if _, taken := claimed[m.Course.ID]; !taken {
			claimed[m.Course.ID] = m
		}
	}

	cb := e.Courses.Batch()
	for i := range matches {
		m := &matches[i]
		if claimed[m.Course.ID] != m {
			continue // a product earlier in match order already claimed this course
		}
		if m.Course.RelatedProductID == m.Product.ID {
			continue
		}
		m.Course.RelatedProductID = m.Product.ID
		if err := cb.Set(m.Course.ID, m.Course); err != nil {
			return productsUpdated, coursesUpdated, fmt.Errorf("reconcile: queue course update: %w", err)
		}
		coursesUpdated++
		if cb.Len() >= batchSize {
			if err := cb.Flush(ctx); err != nil {
				return productsUpdated, coursesUpdated, fmt.Errorf("reconcile: flush course updates: %w", err)
			}
		}
	}
	if err := cb.Flush(ctx); err != nil {
		return productsUpdated, coursesUpdated, fmt.Errorf("reconcile: flush course updates: %w", err)
	}

	return productsUpdated, coursesUpdated, nil
}

func (e *Engine) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}
