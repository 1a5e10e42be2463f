// Package meta normalizes the flat per-item metadata of the legacy
// export into typed values. The export encodes everything as strings,
// repeats keys, and flattens sub-objects into indexed key families like
// lessons_0_title / lessons_1_title.
package meta

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/wpxml"
)

// Meta is the normalized string->value view of an item's metadata.
type Meta map[string]string

// Extract flattens the raw pair list. Pairs without a key are ignored;
// a later duplicate key overwrites an earlier one.
func Extract(pairs []wpxml.MetaKV) Meta {
	m := make(Meta, len(pairs))
	for _, kv := range pairs {
		k := strings.TrimSpace(kv.Key)
		if k == "" {
			continue
		}
		m[k] = kv.Value
	}
	return m
}

// Categories extracts the friendly identifiers of an item's category
// references, preferring the nicename attribute over the display text.
// Empty results are filtered out.
func Categories(cats []wpxml.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		v := strings.TrimSpace(c.Nicename)
		if v == "" {
			v = strings.TrimSpace(c.Text)
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Number parses a metadata value as a number. The second return is
// false when the value is absent or unparseable; callers must treat
// that as "no value", never as zero.
func Number(s string) (float64, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, true
	}
	// tolerate decimal commas ("1234,5")
	if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64); err == nil {
		return f, true
	}
	return 0, false
}

// IDList parses a comma-separated list of numeric ids. Unparseable
// entries are dropped silently.
func IDList(s string) []int64 {
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, ok := Number(p)
		if !ok {
			continue
		}
		out = append(out, int64(v))
	}
	return out
}

// Record is one reconstructed sub-object of an indexed group. Optional
// fields that were absent in the source are absent from the map, never
// stored empty.
type Record map[string]string

// IndexedGroup reconstructs the ordered sub-objects a flat key family
// encodes. Keys follow the pattern prefix_<index>_<field> with indices
// starting at 0. The scan stops at the first index whose stopField key
// is missing, so only a strictly contiguous prefix is produced; a gap
// at index 1 hides index 2 even if its keys exist.
func IndexedGroup(m Meta, prefix string, fields []string, stopField string) []Record {
	var out []Record
	for i := 0; ; i++ {
		if _, ok := m[key(prefix, i, stopField)]; !ok {
			break
		}
		rec := make(Record, len(fields))
		for _, f := range fields {
			if v, ok := m[key(prefix, i, f)]; ok && strings.TrimSpace(v) != "" {
				rec[f] = v
			}
		}
		out = append(out, rec)
	}
	return out
}

func key(prefix string, i int, field string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, i, field)
}
