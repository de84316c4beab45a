package enrich

import (
	"context"
	"fmt"
	"os"

	"github.com/wdm0006/tripjanitor/pkg/io/tableio"
	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/transform/standardize"
)

// ZoneLookup maps a zone id to its name and borough.
type ZoneLookup struct {
	rows    map[int64]int
	name    *j.StringColumn
	borough *j.StringColumn
}

// ZonesFromFrame builds a lookup from a table with LocationID, Zone and
// Borough columns. Names are trimmed and the first row wins for a repeated id.
func ZonesFromFrame(f *j.Frame) (*ZoneLookup, error) {
	idCol, ok := firstOf(f, "LocationID", "location_id", "zone_id")
	if !ok {
		return nil, fmt.Errorf("%w: zone table has no LocationID column", ErrReferenceDataMissing)
	}
	ids, _ := j.AsInt(idCol)

	nameAliases := []string{"Zone", "zone", "zone_name"}
	boroughAliases := []string{"Borough", "borough"}
	p := j.NewPipeline()
	for _, aliases := range [][]string{nameAliases, boroughAliases} {
		if c, ok := firstOf(f, aliases...); ok {
			p.Add(&standardize.Trim{Column: c.Name()})
		}
	}
	trimmed, err := p.Run(context.Background(), f)
	if err != nil {
		return nil, err
	}
	name := stringColumn(trimmed, f.Rows(), nameAliases...)
	borough := stringColumn(trimmed, f.Rows(), boroughAliases...)

	z := &ZoneLookup{rows: make(map[int64]int, f.Rows()), name: name, borough: borough}
	for r := 0; r < ids.Len(); r++ {
		id, ok := ids.Get(r)
		if !ok {
			continue
		}
		if _, dup := z.rows[id]; !dup {
			z.rows[id] = r
		}
	}
	return z, nil
}

// LoadZones reads the zone table at path.
func LoadZones(path string) (*ZoneLookup, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no zone table configured", ErrReferenceDataMissing)
	}
	f, err := readReference(path)
	if err != nil {
		return nil, err
	}
	return ZonesFromFrame(f)
}

// Len is the number of distinct zone ids.
func (z *ZoneLookup) Len() int { return len(z.rows) }

// Lookup returns the zone name and borough for id.
func (z *ZoneLookup) Lookup(id int64) (name, borough string, ok bool) {
	r, ok := z.rows[id]
	if !ok {
		return "", "", false
	}
	name, _ = z.name.Get(r)
	borough, _ = z.borough.Get(r)
	return name, borough, true
}

func stringColumn(f *j.Frame, n int, names ...string) *j.StringColumn {
	if c, ok := firstOf(f, names...); ok {
		if sc, ok := c.(*j.StringColumn); ok {
			return sc
		}
	}
	c, _ := j.NullColumn(names[0], j.KindString, n)
	return c.(*j.StringColumn)
}

func readReference(path string) (*j.Frame, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrReferenceDataMissing, path)
		}
		return nil, err
	}
	return tableio.Read(path)
}
