package sorting

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"gradebook-sync/internal/domain"
)

// Option identifies one of the eight course sort orders.
type Option string

const (
	NameAsc       Option = "name_asc"
	NameDesc      Option = "name_desc"
	StartDateAsc  Option = "start_date_asc"
	StartDateDesc Option = "start_date_desc"
	EndDateAsc    Option = "end_date_asc"
	EndDateDesc   Option = "end_date_desc"
	CreatedAsc    Option = "created_asc"
	CreatedDesc   Option = "created_desc"
)

// Options lists every sort order in display-cycling order.
var Options = []Option{
	NameAsc, NameDesc,
	StartDateAsc, StartDateDesc,
	EndDateAsc, EndDateDesc,
	CreatedAsc, CreatedDesc,
}

// Label returns the human-readable name shown in the UI.
func (o Option) Label() string {
	switch o {
	case NameAsc:
		return "Name ↑"
	case NameDesc:
		return "Name ↓"
	case StartDateAsc:
		return "Start date ↑"
	case StartDateDesc:
		return "Start date ↓"
	case EndDateAsc:
		return "End date ↑"
	case EndDateDesc:
		return "End date ↓"
	case CreatedAsc:
		return "Created ↑"
	case CreatedDesc:
		return "Created ↓"
	}
	return string(o)
}

// Next cycles to the following sort order.
func (o Option) Next() Option {
	for i, opt := range Options {
		if opt == o {
			return Options[(i+1)%len(Options)]
		}
	}
	return NameAsc
}

// FilterAndSort returns a new slice holding the courses whose name contains
// query (case-insensitive; empty query matches all), ordered by opt.
// The input slice is never mutated and ties keep their original relative
// order.
func FilterAndSort(courses []domain.Course, query string, opt Option) []domain.Course {
	out := make([]domain.Course, 0, len(courses))
	q := strings.ToLower(strings.TrimSpace(query))
	for _, c := range courses {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}

	cmp := comparator(opt)
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j]) < 0
	})
	return out
}

// comparator builds a three-way compare for the given option. Returning 0
// for equal keys lets SliceStable keep the incoming order.
func comparator(opt Option) func(a, b domain.Course) int {
	coll := collate.New(language.English, collate.Loose)

	byName := func(a, b domain.Course) int {
		if c := compareDigitPrefix(a.Name, b.Name); c != 0 {
			return c
		}
		return coll.CompareString(a.Name, b.Name)
	}

	switch opt {
	case NameAsc:
		return byName
	case NameDesc:
		return func(a, b domain.Course) int { return -byName(a, b) }
	case StartDateAsc:
		return func(a, b domain.Course) int {
			return compareDates(a.StartDate, b.StartDate, false)
		}
	case StartDateDesc:
		return func(a, b domain.Course) int {
			return compareDates(a.StartDate, b.StartDate, true)
		}
	case EndDateAsc:
		return func(a, b domain.Course) int {
			return compareDates(a.EndDate, b.EndDate, false)
		}
	case EndDateDesc:
		return func(a, b domain.Course) int {
			return compareDates(a.EndDate, b.EndDate, true)
		}
	case CreatedAsc:
		return func(a, b domain.Course) int {
			return compareInt64(a.CreatedAt, b.CreatedAt)
		}
	case CreatedDesc:
		return func(a, b domain.Course) int {
			return -compareInt64(a.CreatedAt, b.CreatedAt)
		}
	}
	return byName
}

// compareDates orders calendar instants, descending when desc is set.
// A record without a date always sorts after dated records, in both
// directions.
func compareDates(a, b string, desc bool) int {
	ta, aok := domain.ParseDate(a)
	tb, bok := domain.ParseDate(b)

	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	case !aok && !bok:
		return 0
	}

	c := 0
	if ta.Before(tb) {
		c = -1
	} else if ta.After(tb) {
		c = 1
	}
	if desc {
		c = -c
	}
	return c
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareDigitPrefix compares the leading ASCII digit runs of two names as
// integers. A name without a digit prefix counts as 0. String-based so
// arbitrarily long runs cannot overflow.
func compareDigitPrefix(a, b string) int {
	return compareDigits(digitPrefix(a), digitPrefix(b))
}

func digitPrefix(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
