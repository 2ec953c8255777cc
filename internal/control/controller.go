package control

import (
	"github.com/vk/flowgrid/internal/execution"
)

// Controller exposes pause/resume/stop for one run. Each operation validates
// the requested transition against the run's current status (pause only from
// running, resume only from paused, stop from either) and fails with
// execution.ErrInvalidTransition otherwise. The status change is applied
// immediately so status queries reflect it; the engine observes the flags at
// its next round boundary.
type Controller struct {
	ec    *execution.Context
	flags *Flags
}

// NewController binds a flag set to a run context.
func NewController(ec *execution.Context, flags *Flags) *Controller {
	return &Controller{ec: ec, flags: flags}
}

// Flags returns the underlying flag set the engine reads.
func (c *Controller) Flags() *Flags { return c.flags }

// Pause requests a cooperative pause. Valid only while the run is running.
func (c *Controller) Pause() (execution.Status, error) {
	if err := c.ec.Pause(); err != nil {
		return c.ec.Status(), err
	}
	c.flags.RequestPause()
	return c.ec.Status(), nil
}

// Resume releases a pause. Valid only while the run is paused.
func (c *Controller) Resume() (execution.Status, error) {
	if err := c.ec.Resume(); err != nil {
		return c.ec.Status(), err
	}
	c.flags.ClearPause()
	return c.ec.Status(), nil
}

// Stop requests a cooperative stop, valid from running or paused. Nodes
// already in flight finish; no further rounds start.
func (c *Controller) Stop(reason string) (execution.Status, error) {
	if err := c.ec.Stop(reason); err != nil {
		return c.ec.Status(), err
	}
	c.flags.RequestStop(reason)
	return c.ec.Status(), nil
}
