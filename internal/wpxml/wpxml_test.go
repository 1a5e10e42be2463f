package wpxml

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
)

const sampleExport = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:excerpt="http://wordpress.org/export/1.2/excerpt/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Tienda</title>
	<item>
		<title>Curso de Moldería</title>
		<wp:post_id>101</wp:post_id>
		<wp:post_type>curso</wp:post_type>
		<wp:post_name>curso-de-molderia</wp:post_name>
		<wp:status>publish</wp:status>
		<wp:post_date>2021-03-15 10:30:00</wp:post_date>
		<wp:post_modified>2021-04-01 08:00:00</wp:post_modified>
		<content:encoded><![CDATA[<p>Aprendé moldería desde cero.</p>]]></content:encoded>
		<excerpt:encoded><![CDATA[Moldería desde cero]]></excerpt:encoded>
		<category domain="product_cat" nicename="online"><![CDATA[Cursos Online]]></category>
		<wp:postmeta>
			<wp:meta_key>lessons_0_title</wp:meta_key>
			<wp:meta_value><![CDATA[Intro]]></wp:meta_value>
		</wp:postmeta>
		<wp:postmeta>
			<wp:meta_key>precio</wp:meta_key>
			<wp:meta_value><![CDATA[$5.000]]></wp:meta_value>
		</wp:postmeta>
	</item>
	<item>
		<title>Molde base</title>
		<wp:post_id>202</wp:post_id>
		<wp:post_type>product</wp:post_type>
		<wp:post_name>molde-base</wp:post_name>
		<wp:status>draft</wp:status>
	</item>
</channel>
</rss>`

func TestParse(t *testing.T) {
	items, err := Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	it := items[0]
	if it.ID != "101" {
		t.Errorf("expected id '101', got %q", it.ID)
	}
	if it.Type != "curso" {
		t.Errorf("expected type 'curso', got %q", it.Type)
	}
	if it.Slug != "curso-de-molderia" {
		t.Errorf("expected slug 'curso-de-molderia', got %q", it.Slug)
	}
	if it.Status != "publish" {
		t.Errorf("expected status 'publish', got %q", it.Status)
	}
	if it.Title != "Curso de Moldería" {
		t.Errorf("unexpected title %q", it.Title)
	}
	// CDATA unwraps transparently
	if it.Content != "<p>Aprendé moldería desde cero.</p>" {
		t.Errorf("unexpected content %q", it.Content)
	}
	if it.Excerpt != "Moldería desde cero" {
		t.Errorf("unexpected excerpt %q", it.Excerpt)
	}
	if len(it.Meta) != 2 {
		t.Fatalf("expected 2 meta pairs, got %d", len(it.Meta))
	}
	if it.Meta[1].Key != "precio" || it.Meta[1].Value != "$5.000" {
		t.Errorf("unexpected meta pair: %+v", it.Meta[1])
	}
	if len(it.Category) != 1 || it.Category[0].Nicename != "online" {
		t.Errorf("unexpected categories: %+v", it.Category)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not xml", "this is not xml"},
		{"wrong root", `<?xml version="1.0"?><feed><entry/></feed>`},
		{"no channel", `<?xml version="1.0"?><rss version="2.0"></rss>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("expected *FormatError, got %T: %v", err, err)
			}
		})
	}
}

func TestParseEmptyChannel(t *testing.T) {
	items, err := Parse(strings.NewReader(
		`<?xml version="1.0"?><rss version="2.0"><channel><title>vacío</title></channel></rss>`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xml")
	if err := os.WriteFile(path, []byte(sampleExport), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestLoadBrotliFile(t *testing.T) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write([]byte(sampleExport)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "export.xml.br")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleExport))
	}))
	defer srv.Close()

	items, err := Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.xml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFilterType(t *testing.T) {
	items, err := Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatal(err)
	}

	cursos := FilterType(items, "curso")
	if len(cursos) != 1 || cursos[0].ID != "101" {
		t.Errorf("unexpected curso filter result: %+v", cursos)
	}
	products := FilterType(items, "product")
	if len(products) != 1 || products[0].ID != "202" {
		t.Errorf("unexpected product filter result: %+v", products)
	}
	if got := FilterType(items, "tip"); len(got) != 0 {
		t.Errorf("expected no tips, got %d", len(got))
	}
}
