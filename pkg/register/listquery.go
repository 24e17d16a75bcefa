package register

import (
	"sort"
	"strings"
	"time"
)

const (
	// DefaultPageSize is used when the caller omits or botches pageSize.
	DefaultPageSize = 10
	// MaxPageSize bounds response size regardless of what was asked for.
	MaxPageSize = 100
)

// dueDateLayout is the rendering searched against and shown by the list UI.
const dueDateLayout = "2006-01-02"

// Query carries the list parameters as received from the transport layer.
// Zero values are valid; Apply normalizes them.
type Query struct {
	PageNumber    int
	PageSize      int
	SearchText    string
	SortColumn    string
	SortDirection string

	// DefaultSize and MaxSize override the package page-size bounds when
	// positive. The transport layer sets them from configuration.
	DefaultSize int
	MaxSize     int
}

// Page is one page of computed rows plus the totals over the filtered,
// unpaginated set.
type Page struct {
	TotalCount int   `json:"totalCount"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
	Items      []Row `json:"items"`
}

// Apply filters, sorts and paginates rows according to the query.
func (q Query) Apply(rows []Row) Page {
	page := q.PageNumber
	if page < 1 {
		page = 1
	}
	def := q.DefaultSize
	if def < 1 {
		def = DefaultPageSize
	}
	max := q.MaxSize
	if max < 1 {
		max = MaxPageSize
	}
	size := q.PageSize
	if size < 1 {
		size = def
	}
	if size > max {
		size = max
	}

	filtered := Filter(rows, q.SearchText)
	Sort(filtered, q.SortColumn, q.SortDirection)

	total := len(filtered)
	totalPages := (total + size - 1) / size

	offset := (page - 1) * size
	if offset > total {
		offset = total
	}
	end := offset + size
	if end > total {
		end = total
	}

	items := make([]Row, end-offset)
	copy(items, filtered[offset:end])

	return Page{
		TotalCount: total,
		PageNumber: page,
		PageSize:   size,
		TotalPages: totalPages,
		Items:      items,
	}
}

// Filter keeps rows where the term is a case-insensitive substring of any
// display field, including the status and the date rendering of the
// computed next-service-due. An empty term keeps everything.
func Filter(rows []Row, term string) []Row {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]Row, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if rowMatches(r, term) {
			out = append(out, r)
		}
	}
	return out
}

func rowMatches(r Row, term string) bool {
	fields := []string{
		r.ItemID,
		r.ItemType,
		r.ItemName,
		r.Vendor,
		r.ResponsibleTeam,
		r.StorageLocation,
		r.AvailabilityStatus,
	}
	if r.NextServiceDue != nil {
		fields = append(fields, r.NextServiceDue.Format(dueDateLayout))
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Sort orders rows in place by a logical column name. Unknown columns and
// the empty column fall back to created-at descending; an unrecognized
// direction means ascending.
func Sort(rows []Row, column, direction string) {
	less, ok := lessFunc(column)
	if !ok {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		})
		return
	}
	desc := strings.EqualFold(strings.TrimSpace(direction), "desc")
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			i, j = j, i
		}
		return less(rows[i], rows[j])
	})
}

func lessFunc(column string) (func(a, b Row) bool, bool) {
	switch strings.ToLower(strings.TrimSpace(column)) {
	case "itemid":
		return func(a, b Row) bool { return lessFold(a.ItemID, b.ItemID) }, true
	case "type", "itemtype":
		return func(a, b Row) bool { return lessFold(a.ItemType, b.ItemType) }, true
	case "itemname":
		return func(a, b Row) bool { return lessFold(a.ItemName, b.ItemName) }, true
	case "vendor":
		return func(a, b Row) bool { return lessFold(a.Vendor, b.Vendor) }, true
	case "storagelocation":
		return func(a, b Row) bool { return lessFold(a.StorageLocation, b.StorageLocation) }, true
	case "responsibleteam":
		return func(a, b Row) bool { return lessFold(a.ResponsibleTeam, b.ResponsibleTeam) }, true
	case "availabilitystatus":
		return func(a, b Row) bool { return lessFold(a.AvailabilityStatus, b.AvailabilityStatus) }, true
	case "nextservicedue":
		return func(a, b Row) bool { return lessDue(a.NextServiceDue, b.NextServiceDue) }, true
	case "createdat":
		return func(a, b Row) bool { return a.CreatedAt.Before(b.CreatedAt) }, true
	}
	return nil, false
}

func lessFold(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

// lessDue orders real dates before nil, so unscheduled items land at the
// end of an ascending sort.
func lessDue(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
