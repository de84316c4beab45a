package janitor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
	imp "github.com/wdm0006/tripjanitor/pkg/transform/impute"
	std "github.com/wdm0006/tripjanitor/pkg/transform/standardize"
)

type dropOdd struct{}

func (dropOdd) Name() string { return "drop_odd" }
func (dropOdd) Apply(_ context.Context, f *j.Frame) (*j.Frame, error) {
	return f.Filter(func(r int) bool { return r%2 == 0 }), nil
}

func TestPipeline(t *testing.T) {
	s := j.Schema{Columns: []j.ColumnSchema{{Name: "x", Type: j.KindFloat, Nullable: true}, {Name: "s", Type: j.KindString, Nullable: true}}}
	f := j.NewFrame(s)
	for i := 0; i < 3; i++ {
		f.AppendNullRow()
	}
	require.NoError(t, f.SetCell(0, "x", 1.0))
	require.NoError(t, f.SetCell(0, "s", " Foo "))
	// rows 1 and 2 left null

	var seen []string
	p := j.NewPipeline().
		Add(&imp.Constant{Column: "x", Value: 0.0}, &std.Trim{Column: "s"}, dropOdd{}).
		Observe(func(step string, in, out int) { seen = append(seen, step) })
	out, err := p.Run(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, []string{"impute_constant", "trim", "drop_odd"}, seen)
	assert.Equal(t, 2, out.Rows())
	colX, _ := out.ColumnByName("x")
	fx := colX.(*j.FloatColumn)
	v, ok := fx.Get(1)
	assert.True(t, ok, "imputer failed to fill null")
	assert.Equal(t, 0.0, v)
	colS, _ := out.ColumnByName("s")
	s0, _ := colS.(*j.StringColumn).Get(0)
	assert.Equal(t, "Foo", s0)
}

func TestPipelineStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := j.NewPipeline().Add(dropOdd{}).Run(ctx, j.NewFrame(j.Schema{}))
	assert.ErrorIs(t, err, context.Canceled)
}
