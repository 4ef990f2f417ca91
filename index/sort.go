package index

import "fmt"

// SortType selects the value a SortField orders by.
type SortType uint8

const (
	// SortScore orders by descending relevance (Reverse flips to ascending).
	SortScore SortType = iota
	// SortDoc orders by index order.
	SortDoc
	// SortNumeric orders by a numeric doc value.
	SortNumeric
	// SortKeyword orders by a keyword doc value.
	SortKeyword
	// SortDistance orders by distance from Center on a geo doc value.
	SortDistance
)

// SortField is one key of a Sort.
type SortField struct {
	Type    SortType
	Field   string
	Reverse bool
	Center  GeoPoint
}

func (f SortField) String() string {
	dir := ""
	if f.Reverse {
		dir = " desc"
	}
	switch f.Type {
	case SortScore:
		return "_score" + dir
	case SortDoc:
		return "_doc" + dir
	case SortDistance:
		return fmt.Sprintf("_distance(%s,%s)%s", f.Field, f.Center, dir)
	default:
		return f.Field + dir
	}
}

// Sort is an ordered list of sort keys. The zero value sorts by relevance.
type Sort struct {
	Fields []SortField
}

// ByScore sorts by relevance.
func ByScore() Sort { return Sort{} }

// ByIndexOrder sorts by DocID.
func ByIndexOrder() Sort { return Sort{Fields: []SortField{{Type: SortDoc}}} }

// Keys returns the effective sort keys, defaulting to relevance.
func (s Sort) Keys() []SortField {
	if len(s.Fields) == 0 {
		return []SortField{{Type: SortScore}}
	}
	return s.Fields
}

// NeedsScores reports whether any key orders by score.
func (s Sort) NeedsScores() bool {
	for _, f := range s.Keys() {
		if f.Type == SortScore {
			return true
		}
	}
	return false
}

// IsIndexOrder reports whether the sort is plain ascending index order.
func (s Sort) IsIndexOrder() bool {
	keys := s.Keys()
	return len(keys) == 1 && keys[0].Type == SortDoc && !keys[0].Reverse
}

func (s Sort) String() string {
	out := ""
	for i, f := range s.Keys() {
		if i > 0 {
			out += ","
		}
		out += f.String()
	}
	return out
}
