package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tillpoint/tillpoint-backend/pkg/config"
	pkgerrors "github.com/tillpoint/tillpoint-backend/pkg/errors"
	"github.com/tillpoint/tillpoint-backend/pkg/listing"
)

var (
	defaultPageSize = 20
	maxPageSize     = 200
)

// ConfigurePaging overrides the built-in page-size bounds from configuration.
// Call once during router setup, before requests are served.
func ConfigurePaging(cfg config.ListingConfig) {
	if cfg.DefaultPageSize > 0 {
		defaultPageSize = cfg.DefaultPageSize
	}
	if cfg.MaxPageSize > 0 {
		maxPageSize = cfg.MaxPageSize
	}
}

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseListSpec reads the shared list-view parameters: search, page,
// page_size (-1 for everything), sort, direction, from/to date bounds, and
// any caller-named field filters.
func ParseListSpec(r *http.Request, filterKeys ...string) (listing.Spec, error) {
	query := r.URL.Query()

	spec := listing.Spec{
		Search:        strings.TrimSpace(query.Get("search")),
		SortField:     strings.TrimSpace(query.Get("sort")),
		SortDirection: listing.Ascending,
	}

	if dir := strings.ToLower(strings.TrimSpace(query.Get("direction"))); dir != "" {
		switch listing.Direction(dir) {
		case listing.Ascending, listing.Descending:
			spec.SortDirection = listing.Direction(dir)
		default:
			return listing.Spec{}, pkgerrors.New(pkgerrors.CodeValidation, "direction must be asc or desc")
		}
	}

	page, err := ParseQueryInt(r, "page", 0, 0, 1<<30)
	if err != nil {
		return listing.Spec{}, err
	}
	spec.Page = page

	pageSize, err := ParseQueryInt(r, "page_size", defaultPageSize, listing.PageSizeAll, maxPageSize)
	if err != nil {
		return listing.Spec{}, err
	}
	if pageSize == 0 {
		return listing.Spec{}, pkgerrors.New(pkgerrors.CodeValidation, "page_size must be positive or -1")
	}
	spec.PageSize = pageSize

	dateRange, err := parseDateRange(query.Get("from"), query.Get("to"))
	if err != nil {
		return listing.Spec{}, err
	}
	spec.DateRange = dateRange

	for _, key := range filterKeys {
		if value := strings.TrimSpace(query.Get(key)); value != "" {
			if spec.FieldFilters == nil {
				spec.FieldFilters = map[string]string{}
			}
			spec.FieldFilters[key] = value
		}
	}
	return spec, nil
}

// ParseDateRange reads the optional from/to bounds on their own, for
// endpoints that take a period but no list spec.
func ParseDateRange(r *http.Request) (*listing.DateRange, error) {
	query := r.URL.Query()
	return parseDateRange(query.Get("from"), query.Get("to"))
}

func parseDateRange(from, to string) (*listing.DateRange, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" && to == "" {
		return nil, nil
	}

	dr := &listing.DateRange{}
	if from != "" {
		start, err := parseDateBound(from, false)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be a date or RFC 3339 timestamp")
		}
		dr.Start = &start
	}
	if to != "" {
		end, err := parseDateBound(to, true)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must be a date or RFC 3339 timestamp")
		}
		dr.End = &end
	}
	if dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is inverted")
	}
	return dr, nil
}

// parseDateBound accepts RFC 3339 timestamps or bare dates. A bare "to" date
// is pushed to the end of that day so the bound stays inclusive.
func parseDateBound(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
