package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Statuses persisted on every document. The legacy system only ever
// emitted "publish" and "draft"; anything else is demoted to draft
// during mapping.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
)

// Product is the persisted shape of a commerce product. The document id
// is the legacy numeric post id in string form and never changes after
// the first migration run.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Status      string   `json:"status"`
	Price       int64    `json:"price"`
	Description string   `json:"description,omitempty"`
	Categories  []string `json:"categories,omitempty"`

	// Location is the site/sede tag inferred from category text.
	// Empty means the product had no categories at all.
	Location string `json:"location,omitempty"`

	// RelatedCourseID is one half of the denormalized product<->course
	// association. Maintained by the reconciliation job; may point at a
	// course that does not exist (yet).
	RelatedCourseID string `json:"relatedCourseId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DecodeProduct unmarshals a stored product document.
func DecodeProduct(data json.RawMessage) (Product, error) {
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return Product{}, fmt.Errorf("domain: decode product: %w", err)
	}
	return p, nil
}
