package deform

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the canonical text form of an acquisition date.
const DateLayout = "2006-01-02"

// DateAxis is the ordered list of acquisition dates indexing the first axis
// of a stack.
type DateAxis []time.Time

// ParseDateAxis parses dates in "2006-01-02" or "20060102" form.
func ParseDateAxis(values []string) (DateAxis, error) {
	axis := make(DateAxis, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		layout := DateLayout
		if len(v) == 8 && !strings.Contains(v, "-") {
			layout = "20060102"
		}
		d, err := time.Parse(layout, v)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", v, err)
		}
		axis = append(axis, d)
	}
	return axis, nil
}

// Validate checks that the axis is strictly increasing.
func (a DateAxis) Validate() error {
	for i := 1; i < len(a); i++ {
		if !a[i].After(a[i-1]) {
			return fmt.Errorf("%w: %s follows %s at index %d", ErrUnsortedAxis,
				a[i].Format(DateLayout), a[i-1].Format(DateLayout), i)
		}
	}
	return nil
}

// Equal reports whether both axes hold the same instants in the same order.
func (a DateAxis) Equal(b DateAxis) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Strings formats every date with DateLayout.
func (a DateAxis) Strings() []string {
	out := make([]string, len(a))
	for i, d := range a {
		out[i] = d.Format(DateLayout)
	}
	return out
}

// Merged is the sorted union of two date axes together with, for each
// source date, its position in Axis.
type Merged struct {
	Axis   DateAxis
	Index1 []int
	Index2 []int
}

// MergeDates concatenates and sorts two axes without removing duplicates.
// A date present in both inputs occupies two slots, the one from a first,
// so Index1 and Index2 never share a position.
func MergeDates(a, b DateAxis) (Merged, error) {
	type entry struct {
		date time.Time
		src  int
		idx  int
	}
	entries := make([]entry, 0, len(a)+len(b))
	for i, d := range a {
		entries = append(entries, entry{date: d, src: 0, idx: i})
	}
	for i, d := range b {
		entries = append(entries, entry{date: d, src: 1, idx: i})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].date.Equal(entries[j].date) {
			return entries[i].date.Before(entries[j].date)
		}
		return entries[i].src < entries[j].src
	})

	m := Merged{
		Axis:   make(DateAxis, len(entries)),
		Index1: make([]int, len(a)),
		Index2: make([]int, len(b)),
	}
	for pos, e := range entries {
		m.Axis[pos] = e.date
		if e.src == 0 {
			m.Index1[e.idx] = pos
		} else {
			m.Index2[e.idx] = pos
		}
	}

	if err := m.verify(a, m.Index1); err != nil {
		return Merged{}, err
	}
	if err := m.verify(b, m.Index2); err != nil {
		return Merged{}, err
	}
	return m, nil
}

func (m Merged) verify(src DateAxis, index []int) error {
	for i, d := range src {
		pos := index[i]
		if pos < 0 || pos >= len(m.Axis) || !m.Axis[pos].Equal(d) {
			return fmt.Errorf("%w: %s", ErrDateNotFound, d.Format(DateLayout))
		}
	}
	return nil
}

// IntersectDates returns the dates present in both axes, in increasing
// order, with their positions in a and b. Both axes must be strictly
// increasing.
func IntersectDates(a, b DateAxis) (common DateAxis, idxA, idxB []int, err error) {
	if err := a.Validate(); err != nil {
		return nil, nil, nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, nil, nil, err
	}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Equal(b[j]):
			common = append(common, a[i])
			idxA = append(idxA, i)
			idxB = append(idxB, j)
			i++
			j++
		case a[i].Before(b[j]):
			i++
		default:
			j++
		}
	}
	return common, idxA, idxB, nil
}
