package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Course is the persisted shape of an online course. Lessons and info
// blocks are reconstructed from the flat indexed metadata of the legacy
// export.
type Course struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Status      string      `json:"status"`
	Description string      `json:"description,omitempty"`
	Lessons     []Lesson    `json:"lessons,omitempty"`
	InfoBlocks  []InfoBlock `json:"infoBlocks,omitempty"`

	// RelatedProductID mirrors Product.RelatedCourseID from the other
	// side. During migration it is seeded from the legacy cross-reference
	// meta when present; afterwards the reconciliation job owns it.
	RelatedProductID string `json:"relatedProductId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lesson is one ordered unit of course content. Optional fields are
// omitted from the stored document entirely when the source meta did
// not carry them.
type Lesson struct {
	Index           int    `json:"index"`
	Title           string `json:"title,omitempty"`
	DescriptionHTML string `json:"descriptionHtml,omitempty"`
	VideoURL        string `json:"videoUrl,omitempty"`
	VideoPassword   string `json:"videoPassword,omitempty"`
	Duration        string `json:"duration,omitempty"`
}

// InfoBlock is a free-form content block shown on the course page.
type InfoBlock struct {
	Index       int    `json:"index"`
	Title       string `json:"title,omitempty"`
	ContentHTML string `json:"contentHtml,omitempty"`
}

// DecodeCourse unmarshals a stored course document.
func DecodeCourse(data json.RawMessage) (Course, error) {
	var c Course
	if err := json.Unmarshal(data, &c); err != nil {
		return Course{}, fmt.Errorf("domain: decode course: %w", err)
	}
	return c, nil
}
