package listing

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tillpoint/tillpoint-backend/pkg/money"
)

// The pipeline is a display-time transform over an in-memory record slice.
// It never mutates its input; the same spec applied to the same records
// always produces the same page.

// FilterAll is the field filter value that disables the constraint.
const FilterAll = "all"

// PageSizeAll disables pagination and returns every record.
const PageSizeAll = -1

// Direction orders sort output.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// DateRange bounds a record's date field inclusively. A nil bound leaves
// that side unbounded.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Spec carries the combined search/filter/sort/pagination parameters for a
// list view.
type Spec struct {
	Search        string
	FieldFilters  map[string]string
	DateRange     *DateRange
	SortField     string
	SortDirection Direction
	Page          int
	PageSize      int
}

// Kind discriminates how a field value filters and sorts.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

// Value is a single record field as seen by the pipeline.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
	ts   time.Time
}

// String builds a text field value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number builds a numeric field value.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d, str: d.String()}
}

// Cents builds a numeric field value from minor-unit cents.
func Cents(cents int64) Value {
	return Number(money.FromCents(cents))
}

// Amount builds a numeric field value from display text such as
// "Rs.70,000". Text without a parsable number sorts as text.
func Amount(s string) Value {
	parsed, err := money.ParseAmount(s)
	if err != nil {
		return String(s)
	}
	return Value{kind: KindNumber, num: parsed, str: s}
}

// Time builds an instant field value.
func Time(t time.Time) Value {
	return Value{kind: KindTime, ts: t, str: t.Format(time.RFC3339)}
}

// Schema describes how the pipeline reads one record type.
type Schema[T any] struct {
	// Searchable names the fields scanned by free-text search.
	Searchable []string
	// DateField names the field consulted by the date range, if any.
	DateField string
	// Field resolves a named field; ok=false means the record lacks it.
	Field func(rec T, name string) (Value, bool)
}

// Result is one visible page plus the entry counters shown under list
// tables ("Showing X to Y of Z entries").
type Result[T any] struct {
	Records      []T
	StartEntry   int
	EndEntry     int
	TotalEntries int
}

// Apply runs filter, sort, and paginate in order.
func Apply[T any](records []T, spec Spec, schema Schema[T]) Result[T] {
	filtered := Filter(records, spec, schema)
	Sort(filtered, spec.SortField, spec.SortDirection, schema)
	return Paginate(filtered, spec.Page, spec.PageSize)
}

// Filter returns the records passing every active constraint: free-text
// search, exact field filters, and the date range.
func Filter[T any](records []T, spec Spec, schema Schema[T]) []T {
	search := strings.ToLower(strings.TrimSpace(spec.Search))

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if search != "" && !matchesSearch(rec, search, schema) {
			continue
		}
		if !matchesFieldFilters(rec, spec.FieldFilters, schema) {
			continue
		}
		if !matchesDateRange(rec, spec.DateRange, schema) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch[T any](rec T, search string, schema Schema[T]) bool {
	for _, field := range schema.Searchable {
		val, ok := schema.Field(rec, field)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(val.str), search) {
			return true
		}
	}
	return false
}

func matchesFieldFilters[T any](rec T, filters map[string]string, schema Schema[T]) bool {
	for field, want := range filters {
		if want == "" || want == FilterAll {
			continue
		}
		val, ok := schema.Field(rec, field)
		if !ok {
			return false
		}
		if val.str != want {
			return false
		}
	}
	return true
}

func matchesDateRange[T any](rec T, dr *DateRange, schema Schema[T]) bool {
	if dr == nil || schema.DateField == "" {
		return true
	}
	val, ok := schema.Field(rec, schema.DateField)
	if !ok || val.kind != KindTime {
		return false
	}
	if dr.Start != nil && val.ts.Before(*dr.Start) {
		return false
	}
	if dr.End != nil && val.ts.After(*dr.End) {
		return false
	}
	return true
}

// Sort orders records in place by the named field. The sort is stable, so
// equal keys keep insertion order. Text compares locale-aware, numbers and
// currency-formatted strings compare numerically, instants chronologically.
func Sort[T any](records []T, field string, direction Direction, schema Schema[T]) {
	if field == "" {
		return
	}

	coll := collate.New(language.Und, collate.IgnoreCase)
	desc := direction == Descending

	sort.SliceStable(records, func(i, j int) bool {
		vi, iok := schema.Field(records[i], field)
		vj, jok := schema.Field(records[j], field)
		if !iok || !jok {
			// missing fields sink to the end regardless of direction
			return iok && !jok
		}
		cmp := compareValues(vi, vj, coll)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func compareValues(a, b Value, coll *collate.Collator) int {
	if a.kind == KindNumber && b.kind == KindNumber {
		return a.num.Cmp(b.num)
	}
	if a.kind == KindTime && b.kind == KindTime {
		switch {
		case a.ts.Before(b.ts):
			return -1
		case a.ts.After(b.ts):
			return 1
		default:
			return 0
		}
	}
	return coll.CompareString(a.str, b.str)
}

// Paginate slices out the requested page. PageSizeAll returns everything and
// ignores the page number; a page past the end yields an empty page, not an
// error.
func Paginate[T any](records []T, page, pageSize int) Result[T] {
	total := len(records)

	if pageSize == PageSizeAll {
		return Result[T]{
			Records:      records,
			StartEntry:   startEntry(total),
			EndEntry:     total,
			TotalEntries: total,
		}
	}

	if page < 0 || pageSize <= 0 {
		return Result[T]{Records: []T{}, TotalEntries: total}
	}

	start := page * pageSize
	if start >= total {
		return Result[T]{Records: []T{}, TotalEntries: total}
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Result[T]{
		Records:      records[start:end],
		StartEntry:   start + 1,
		EndEntry:     end,
		TotalEntries: total,
	}
}

func startEntry(total int) int {
	if total == 0 {
		return 0
	}
	return 1
}

// EntryRange computes the 1-based display counters for a page that came
// back with count records. An empty page, including a page past the end,
// reports zeroes.
func EntryRange(spec Spec, count int) (start, end int) {
	if count == 0 {
		return 0, 0
	}
	if spec.PageSize == PageSizeAll {
		return 1, count
	}
	start = spec.Page*spec.PageSize + 1
	return start, start + count - 1
}
