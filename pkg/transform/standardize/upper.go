package standardize

import (
	"context"
	"strings"

	j "github.com/wdm0006/tripjanitor/pkg/janitor"
)

type Upper struct{ Column string }

func (t *Upper) Name() string { return "upper" }

func (t *Upper) Apply(ctx context.Context, f *j.Frame) (*j.Frame, error) {
	return mapStrings(f, t.Column, strings.ToUpper)
}
