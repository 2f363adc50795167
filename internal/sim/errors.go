package sim

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

// SimError reports a body whose state became non-finite during a run.
type SimError struct {
	Time    float64
	Step    int
	Body    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) body %d: %s", e.Step, e.Time, e.Body, e.Message)
}
