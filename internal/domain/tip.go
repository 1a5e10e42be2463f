package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Tip is a short editorial article ("tip" in the legacy system).
// ContentHTML is sanitized during mapping; Excerpt is derived from the
// content when the source did not provide one.
type Tip struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Status      string `json:"status"`
	ContentHTML string `json:"contentHtml"`
	Excerpt     string `json:"excerpt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DecodeTip unmarshals a stored tip document.
func DecodeTip(data json.RawMessage) (Tip, error) {
	var t Tip
	if err := json.Unmarshal(data, &t); err != nil {
		return Tip{}, fmt.Errorf("domain: decode tip: %w", err)
	}
	return t, nil
}
