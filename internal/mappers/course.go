package mappers

import (
	"strconv"
	"strings"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/domain"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/meta"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/wpxml"
)

// Meta key families of the course post type. The page builder flattened
// each repeater row into prefix_<index>_<field> keys.
var (
	lessonFields    = []string{"title", "description", "link_video", "password_video", "duration"}
	infoBlockFields = []string{"title", "content"}
)

// CourseFromItem maps an exported course post into its persisted
// document, reconstructing lessons and info blocks from the flat
// indexed meta keys.
func CourseFromItem(it wpxml.Item) (domain.Course, error) {
	m := meta.Extract(it.Meta)

	c := domain.Course{
		ID:          strings.TrimSpace(it.ID),
		Title:       mapTitle(it.Title, m["title"]),
		Slug:        strings.TrimSpace(it.Slug),
		Status:      mapStatus(it.Status),
		Description: strings.TrimSpace(firstNonEmpty(it.Content, m["description"])),
		Lessons:     mapLessons(m),
		InfoBlocks:  mapInfoBlocks(m),
		CreatedAt:   parseDate(it.Date),
		UpdatedAt:   parseDate(it.Modified),
	}

	// legacy product cross-reference; the reconciliation job consumes
	// this as its tier-3 signal
	if id, ok := meta.Number(m["producto_relacionado"]); ok && id > 0 {
		c.RelatedProductID = strconv.FormatInt(int64(id), 10)
	}

	return c, nil
}

func mapLessons(m meta.Meta) []domain.Lesson {
	recs := meta.IndexedGroup(m, "lessons", lessonFields, "title")
	if len(recs) == 0 {
		return nil
	}
	out := make([]domain.Lesson, 0, len(recs))
	for i, r := range recs {
		out = append(out, domain.Lesson{
			Index:           i,
			Title:           r["title"],
			DescriptionHTML: r["description"],
			VideoURL:        r["link_video"],
			VideoPassword:   r["password_video"],
			Duration:        r["duration"],
		})
	}
	return out
}

func mapInfoBlocks(m meta.Meta) []domain.InfoBlock {
	recs := meta.IndexedGroup(m, "info_blocks", infoBlockFields, "title")
	if len(recs) == 0 {
		return nil
	}
	out := make([]domain.InfoBlock, 0, len(recs))
	for i, r := range recs {
		out = append(out, domain.InfoBlock{
			Index:       i,
			Title:       r["title"],
			ContentHTML: r["content"],
		})
	}
	return out
}
