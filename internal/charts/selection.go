package charts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/vizboard/internal/dataset"
)

// Selection is the set of columns and parameters a chart renders with.
type Selection struct {
	Columns map[string]string `json:"columns"`
	Params  map[string]int    `json:"params,omitempty"`
}

// Column returns the column chosen for a slot, or "" when none is.
func (s Selection) Column(slot string) string {
	return s.Columns[slot]
}

// Param returns a parameter value, or 0 (automatic) when unset.
func (s Selection) Param(name string) int {
	return s.Params[name]
}

// Key returns the query parameter name for a slot or parameter of a chart.
func Key(kind, name string) string {
	return kind + "." + name
}

// NoneValue is the control value that clears an optional slot.
const NoneValue = "none"

// Eligible returns the dataset columns that may fill a slot, in file order.
func Eligible(ds *dataset.Dataset, slot Slot) []string {
	return ds.ColumnsOfKind(slot.Kinds...)
}

// Available reports whether the dataset meets the chart's requirements.
func Available(def Definition, ds *dataset.Dataset) bool {
	for _, req := range def.Requires {
		if len(ds.ColumnsOfKind(req.Kinds...)) < req.Min {
			return false
		}
	}
	return true
}

// Resolve turns raw control values into a Selection. Raw keys use the
// "<kind>.<slot>" form. Missing required slots default to the first eligible
// column; a named column that does not exist or has an ineligible kind is an
// error.
func Resolve(def Definition, ds *dataset.Dataset, raw map[string]string) (Selection, error) {
	sel := Selection{
		Columns: make(map[string]string, len(def.Slots)),
		Params:  make(map[string]int, len(def.Params)),
	}

	for _, slot := range def.Slots {
		v := strings.TrimSpace(raw[Key(def.Kind, slot.Name)])

		if v == "" || (slot.Optional && v == NoneValue) {
			if slot.Optional {
				continue
			}
			eligible := Eligible(ds, slot)
			if len(eligible) == 0 {
				return Selection{}, fmt.Errorf("%w: no column for %s", ErrUnavailable, slot.Name)
			}
			sel.Columns[slot.Name] = eligible[0]
			continue
		}

		col, ok := ds.Column(v)
		if !ok || !slot.Accepts(col.Kind) {
			return Selection{}, fmt.Errorf("%w: %s", dataset.ErrColumnNotFound, v)
		}
		sel.Columns[slot.Name] = v
	}

	for _, p := range def.Params {
		v := strings.TrimSpace(raw[Key(def.Kind, p.Name)])
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < p.Min || n > p.Max {
			return Selection{}, fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidParam, Key(def.Kind, p.Name), p.Min, p.Max)
		}
		sel.Params[p.Name] = n
	}

	return sel, nil
}

// Raw flattens a Selection back into control values, the inverse of Resolve.
func (s Selection) Raw(kind string) map[string]string {
	raw := make(map[string]string, len(s.Columns)+len(s.Params))
	for slot, col := range s.Columns {
		raw[Key(kind, slot)] = col
	}
	for name, v := range s.Params {
		raw[Key(kind, name)] = strconv.Itoa(v)
	}
	return raw
}
