package janitor

import "context"

// Transform is a mutation or validation applied to a Frame.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// StepObserver is told the row count before and after every step.
type StepObserver func(step string, rowsIn, rowsOut int)

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps    []Transform
	observer StepObserver
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t ...Transform) *Pipeline {
	p.steps = append(p.steps, t...)
	return p
}

// Observe installs fn as the step observer.
func (p *Pipeline) Observe(fn StepObserver) *Pipeline {
	p.observer = fn
	return p
}

// Steps returns the step names in order.
func (p *Pipeline) Steps() []string {
	out := make([]string, len(p.steps))
	for i, t := range p.steps {
		out[i] = t.Name()
	}
	return out
}

func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	cur := f
	for _, t := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in := cur.Rows()
		next, err := t.Apply(ctx, cur)
		if err != nil {
			return nil, err
		}
		if p.observer != nil {
			p.observer(t.Name(), in, next.Rows())
		}
		cur = next
	}
	return cur, nil
}
