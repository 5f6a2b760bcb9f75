package boundary

import (
	"fmt"
	"strings"

	"github.com/twpayne/go-geom"
)

// ValidationError lists every problem found in a dataset.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("boundary: invalid dataset: %s", strings.Join(e.Problems, "; "))
}

// Validate checks that d holds exactly want features, each with a non-empty
// polygonal geometry and a unique non-empty identifier under the resolved
// feature key.
func Validate(d *Dataset, want int) error {
	if d == nil {
		return &ValidationError{Problems: []string{"no dataset"}}
	}

	var problems []string
	if len(d.Features) != want {
		problems = append(problems,
			fmt.Sprintf("expected %d features, got %d", want, len(d.Features)))
	}

	prop := PropertyName(ResolveFeatureKey(d))
	seen := make(map[string]int, len(d.Features))
	for i, f := range d.Features {
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
			if f.Geometry.Empty() {
				problems = append(problems, fmt.Sprintf("feature %d: empty geometry", i))
			}
		case nil:
			problems = append(problems, fmt.Sprintf("feature %d: missing geometry", i))
		default:
			problems = append(problems, fmt.Sprintf("feature %d: unsupported geometry %T", i, f.Geometry))
		}

		id := f.Identifier(prop)
		if id == "" {
			problems = append(problems, fmt.Sprintf("feature %d: empty %s", i, prop))
			continue
		}
		if first, dup := seen[id]; dup {
			problems = append(problems, fmt.Sprintf("feature %d: duplicate %s %q (first at %d)", i, prop, id, first))
			continue
		}
		seen[id] = i
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Find returns the feature whose identifier under prop equals id. Surrounding
// space in id is ignored.
func (d *Dataset) Find(prop, id string) (Feature, bool) {
	id = strings.TrimSpace(id)
	for _, f := range d.Features {
		if f.Identifier(prop) == id {
			return f, true
		}
	}
	return Feature{}, false
}
