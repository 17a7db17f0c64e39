package listing

import (
	"testing"
	"time"
)

type row struct {
	Name     string
	Category string
	Price    string
	Added    time.Time
}

var rowSchema = Schema[row]{
	Searchable: []string{"name"},
	DateField:  "added",
	Field: func(r row, name string) (Value, bool) {
		switch name {
		case "name":
			return String(r.Name), true
		case "category":
			return String(r.Category), true
		case "price":
			return Amount(r.Price), true
		case "added":
			return Time(r.Added), true
		}
		return Value{}, false
	},
}

func sampleRows() []row {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []row{
		{Name: "Gaming Laptop", Category: "electronics", Price: "Rs.70,000", Added: base},
		{Name: "Office Chair", Category: "furniture", Price: "Rs.8,500", Added: base.AddDate(0, 0, 1)},
		{Name: "Mechanical Keyboard", Category: "electronics", Price: "Rs.9,800", Added: base.AddDate(0, 0, 2)},
		{Name: "Standing Desk", Category: "furniture", Price: "Rs.105,000", Added: base.AddDate(0, 0, 3)},
		{Name: "USB Cable", Category: "electronics", Price: "Rs.450", Added: base.AddDate(0, 0, 4)},
	}
}

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestFilterWithoutConstraintsKeepsEverything(t *testing.T) {
	rows := sampleRows()
	got := Filter(rows, Spec{}, rowSchema)
	if len(got) != len(rows) {
		t.Fatalf("expected identity filter, got %d of %d", len(got), len(rows))
	}
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	got := Filter(sampleRows(), Spec{Search: "LAPTOP"}, rowSchema)
	if len(got) != 1 || got[0].Name != "Gaming Laptop" {
		t.Fatalf("expected one laptop, got %v", names(got))
	}
}

func TestFilterFieldAllDisablesConstraint(t *testing.T) {
	spec := Spec{FieldFilters: map[string]string{"category": FilterAll}}
	got := Filter(sampleRows(), spec, rowSchema)
	if len(got) != 5 {
		t.Fatalf(`expected "all" to disable the filter, got %d rows`, len(got))
	}

	spec.FieldFilters["category"] = "furniture"
	got = Filter(sampleRows(), spec, rowSchema)
	if len(got) != 2 {
		t.Fatalf("expected 2 furniture rows, got %v", names(got))
	}
}

func TestFilterDateRangeInclusive(t *testing.T) {
	rows := sampleRows()
	start := rows[1].Added
	end := rows[3].Added
	got := Filter(rows, Spec{DateRange: &DateRange{Start: &start, End: &end}}, rowSchema)
	if len(got) != 3 {
		t.Fatalf("expected inclusive bounds to keep 3 rows, got %v", names(got))
	}
}

func TestSortCurrencyStringsNumerically(t *testing.T) {
	rows := sampleRows()
	Sort(rows, "price", Ascending, rowSchema)

	want := []string{"USB Cable", "Office Chair", "Mechanical Keyboard", "Gaming Laptop", "Standing Desk"}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("position %d: expected %q, got %v", i, name, names(rows))
		}
	}
}

func TestSortDescending(t *testing.T) {
	rows := sampleRows()
	Sort(rows, "price", Descending, rowSchema)
	if rows[0].Name != "Standing Desk" || rows[4].Name != "USB Cable" {
		t.Fatalf("unexpected descending order: %v", names(rows))
	}
}

func TestSortIsStable(t *testing.T) {
	rows := []row{
		{Name: "B", Category: "same"},
		{Name: "A", Category: "same"},
		{Name: "C", Category: "same"},
	}
	Sort(rows, "category", Ascending, rowSchema)
	if rows[0].Name != "B" || rows[1].Name != "A" || rows[2].Name != "C" {
		t.Fatalf("equal keys should keep insertion order, got %v", names(rows))
	}
}

func TestPaginatePageSizeAllReturnsEverything(t *testing.T) {
	rows := sampleRows()
	res := Paginate(rows, 3, PageSizeAll)

	if len(res.Records) != 5 {
		t.Fatalf("expected all rows, got %d", len(res.Records))
	}
	if res.StartEntry != 1 || res.EndEntry != 5 || res.TotalEntries != 5 {
		t.Fatalf("expected entries 1-5 of 5, got %d-%d of %d", res.StartEntry, res.EndEntry, res.TotalEntries)
	}
}

func TestPaginateSlicesPages(t *testing.T) {
	rows := sampleRows()

	first := Paginate(rows, 0, 2)
	if len(first.Records) != 2 || first.StartEntry != 1 || first.EndEntry != 2 {
		t.Fatalf("first page wrong: %d records, entries %d-%d", len(first.Records), first.StartEntry, first.EndEntry)
	}

	last := Paginate(rows, 2, 2)
	if len(last.Records) != 1 || last.StartEntry != 5 || last.EndEntry != 5 {
		t.Fatalf("last page wrong: %d records, entries %d-%d", len(last.Records), last.StartEntry, last.EndEntry)
	}
}

func TestPaginatePastEndIsEmptyNotError(t *testing.T) {
	res := Paginate(sampleRows(), 10, 2)
	if len(res.Records) != 0 {
		t.Fatalf("expected empty page, got %d records", len(res.Records))
	}
	if res.TotalEntries != 5 {
		t.Fatalf("expected total preserved, got %d", res.TotalEntries)
	}
}

func TestPaginateEmptyInput(t *testing.T) {
	res := Paginate([]row{}, 0, 10)
	if len(res.Records) != 0 || res.StartEntry != 0 || res.TotalEntries != 0 {
		t.Fatalf("unexpected result for empty input: %+v", res)
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	spec := Spec{
		FieldFilters:  map[string]string{"category": "electronics"},
		SortField:     "price",
		SortDirection: Descending,
		Page:          0,
		PageSize:      2,
	}

	first := Apply(sampleRows(), spec, rowSchema)
	second := Apply(sampleRows(), spec, rowSchema)

	if len(first.Records) != len(second.Records) {
		t.Fatalf("run lengths differ: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		if first.Records[i].Name != second.Records[i].Name {
			t.Fatalf("run %d differs: %q vs %q", i, first.Records[i].Name, second.Records[i].Name)
		}
	}
	if first.Records[0].Name != "Gaming Laptop" {
		t.Fatalf("expected most expensive electronics first, got %v", names(first.Records))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	original := names(rows)

	Apply(rows, Spec{SortField: "price", SortDirection: Ascending, PageSize: PageSizeAll}, rowSchema)

	for i, name := range names(rows) {
		if name != original[i] {
			// Sort works on the filtered copy, never the caller's slice.
			t.Fatalf("input mutated at %d: %q -> %q", i, original[i], name)
		}
	}
}

func TestEntryRange(t *testing.T) {
	cases := []struct {
		name      string
		spec      Spec
		count     int
		wantStart int
		wantEnd   int
	}{
		{"first page full", Spec{Page: 0, PageSize: 10}, 10, 1, 10},
		{"second page partial", Spec{Page: 1, PageSize: 10}, 3, 11, 13},
		{"unpaginated", Spec{PageSize: PageSizeAll}, 7, 1, 7},
		{"empty result", Spec{Page: 0, PageSize: 10}, 0, 0, 0},
		{"page past the end", Spec{Page: 5, PageSize: 10}, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := EntryRange(tc.spec, tc.count)
			if start != tc.wantStart || end != tc.wantEnd {
				t.Fatalf("EntryRange(%+v, %d) = (%d, %d), want (%d, %d)",
					tc.spec, tc.count, start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}
}
