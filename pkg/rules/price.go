package rules

import (
	"context"
	"fmt"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	"github.com/wdm0006/tripjanitor/pkg/trips"
)

// derivePrice writes price_base from Base and price_total_est either from a
// reported Total or as Base plus the Fees that are present. A null fee adds
// nothing; callers impute fees first when that matters.
type derivePrice struct {
	Base  string
	Total string
	Fees  []string
}

func (t *derivePrice) Name() string { return "derive_price" }

func (t *derivePrice) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	bc, ok := f.ColumnByName(t.Base)
	if !ok {
		return nil, fmt.Errorf("derive_price: missing column %s", t.Base)
	}
	base, _ := j.AsFloat(bc)

	var total j.Column
	if t.Total != "" {
		tc, ok := f.ColumnByName(t.Total)
		if !ok {
			return nil, fmt.Errorf("derive_price: missing column %s", t.Total)
		}
		tf, _ := j.AsFloat(tc)
		total = tf.WithName(trips.PriceTotalEst)
	} else {
		var fees []*j.FloatColumn
		for _, name := range t.Fees {
			if c, ok := f.ColumnByName(name); ok {
				fc, _ := j.AsFloat(c)
				fees = append(fees, fc)
			}
		}
		sum := j.NewFloatColumn(trips.PriceTotalEst, f.Rows())
		for r := 0; r < f.Rows(); r++ {
			v, ok := base.Get(r)
			if !ok {
				sum.SetNull(r)
				continue
			}
			for _, fc := range fees {
				if x, ok := fc.Get(r); ok {
					v += x
				}
			}
			sum.Set(r, v)
		}
		total = sum
	}

	out, err := f.With(base.WithName(trips.PriceBase))
	if err != nil {
		return nil, err
	}
	return out.With(total)
}
