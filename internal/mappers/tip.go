package mappers

import (
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/domain"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/meta"
	"github.com/bauldemodadev/bauldemoda-sub000/internal/wpxml"
)

// tipPolicy strips the script/style noise old editor plugins left in
// tip bodies while keeping regular formatting markup.
var tipPolicy = bluemonday.UGCPolicy()

const excerptMaxRunes = 200

// TipFromItem maps an exported tip post into its persisted document.
// The rendered content is sanitized; when the source has no excerpt one
// is derived from the content.
func TipFromItem(it wpxml.Item) (domain.Tip, error) {
	m := meta.Extract(it.Meta)

	content := tipPolicy.Sanitize(strings.TrimSpace(it.Content))

	excerpt := strings.TrimSpace(it.Excerpt)
	if excerpt == "" {
		excerpt = deriveExcerpt(content)
	}

	return domain.Tip{
		ID:          strings.TrimSpace(it.ID),
		Title:       mapTitle(it.Title, m["title"]),
		Slug:        strings.TrimSpace(it.Slug),
		Status:      mapStatus(it.Status),
		ContentHTML: content,
		Excerpt:     excerpt,
		CreatedAt:   parseDate(it.Date),
		UpdatedAt:   parseDate(it.Modified),
	}, nil
}

// deriveExcerpt flattens sanitized HTML to plain text and truncates it
// on a word boundary. Best effort: an empty excerpt is acceptable.
func deriveExcerpt(html string) string {
	if html == "" {
		return ""
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return ""
	}

	plain := strings.Join(strings.Fields(md), " ")
	if len([]rune(plain)) <= excerptMaxRunes {
		return plain
	}

	runes := []rune(plain)[:excerptMaxRunes]
	// back off to the last word boundary
	cut := len(runes)
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
