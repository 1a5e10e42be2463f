package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestProductJSONShape(t *testing.T) {
	p := Product{ID: "1", Name: "Molde", Slug: "molde", Status: StatusPublish, Price: 5000}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)

	// optional fields absent in the source must be absent from the
	// stored document, not stored as empty strings
	for _, field := range []string{"description", "categories", "location", "relatedCourseId"} {
		if strings.Contains(s, `"`+field+`"`) {
			t.Errorf("empty optional field %q must be omitted: %s", field, s)
		}
	}
	if !strings.Contains(s, `"price":5000`) {
		t.Errorf("price must always be present: %s", s)
	}

	got, err := DecodeProduct(b)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID || got.Name != p.Name || got.Price != p.Price || got.Status != p.Status {
		t.Errorf("roundtrip mismatch: %+v != %+v", got, p)
	}
}

func TestLessonIndexAlwaysStored(t *testing.T) {
	c := Course{
		ID: "101", Title: "Curso", Slug: "curso", Status: StatusPublish,
		Lessons: []Lesson{{Index: 0, Title: "Intro"}},
	}

	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	// index zero is meaningful ordering data, never omitted
	if !strings.Contains(string(b), `"index":0`) {
		t.Errorf("lesson index 0 must be stored: %s", b)
	}
	if strings.Contains(string(b), `"videoUrl"`) {
		t.Errorf("absent lesson fields must be omitted: %s", b)
	}
}

func TestDecodeErrors(t *testing.T) {
	bad := json.RawMessage(`{"id": 42}`) // id must be a string

	if _, err := DecodeProduct(bad); err == nil {
		t.Error("DecodeProduct must reject a mistyped document")
	}
	if _, err := DecodeCourse(bad); err == nil {
		t.Error("DecodeCourse must reject a mistyped document")
	}
	if _, err := DecodeTip(bad); err == nil {
		t.Error("DecodeTip must reject a mistyped document")
	}
}
