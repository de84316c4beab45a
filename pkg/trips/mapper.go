package trips

import (
	"context"
	"fmt"
	"strings"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

// SchemaError reports an input with none of the columns a table expects.
type SchemaError struct {
	Service   string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("no expected columns for service %s (input has: %s)", e.Service, strings.Join(e.Available, ", "))
}

// Mapper selects the table's raw columns that are present in the input and
// renames them to canonical names, in table order. Raw columns outside the
// table are dropped. When two raw names map to the same canonical column the
// first present one wins.
type Mapper struct {
	Table RenameTable
}

func (m *Mapper) Name() string { return "map_schema" }

func (m *Mapper) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	cols := make([]j.Column, 0, len(m.Table.Fields))
	taken := make(map[string]struct{}, len(m.Table.Fields))
	for _, fd := range m.Table.Fields {
		if _, dup := taken[fd.Canonical]; dup {
			continue
		}
		c, ok := f.ColumnByName(fd.Raw)
		if !ok {
			continue
		}
		cols = append(cols, c.WithName(fd.Canonical))
		taken[fd.Canonical] = struct{}{}
	}
	if len(cols) == 0 {
		return nil, &SchemaError{Service: m.Table.Service, Available: f.Schema().Names()}
	}
	return j.FromColumns(cols...)
}
