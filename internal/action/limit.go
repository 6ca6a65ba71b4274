package action

import "context"

// Limit gates an action behind a counter threshold.
type Limit struct {
	limit  int64
	action Action
}

// NewLimit returns a Limit that fires action once a counter reaches limit.
func NewLimit(limit int64, action Action) *Limit {
	return &Limit{limit: limit, action: action}
}

// IsReached reports whether Run would fire for counter.
func (l *Limit) IsReached(counter *Counter) bool {
	return counter.IsGreaterOrEqual(l.limit)
}

// Run fires the action when counter >= limit. The counter is not touched.
func (l *Limit) Run(ctx context.Context, counter *Counter) error {
	if l.IsReached(counter) {
		return l.action.Run(ctx)
	}
	return nil
}

// ResetAndRun resets the counter and then fires the action when
// counter >= limit.
func (l *Limit) ResetAndRun(ctx context.Context, counter *Counter) error {
	if l.IsReached(counter) {
		counter.Reset()
		return l.action.Run(ctx)
	}
	return nil
}

func (l *Limit) String() string { return l.action.String() }
