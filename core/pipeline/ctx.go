package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Ctx is passed into every handler invocation. It carries the run context
// (observed at every suspension point for cooperative cancellation), the
// actor-scoped logger and the stamp of the message being handled.
//
// A Ctx is only valid for the duration of the handler invocation it was
// created for; handlers must not retain it.
type Ctx struct {
	context.Context

	cell *cell
	log  *slog.Logger
	seq  uint64
	at   time.Time
}

// Log returns the logger scoped to the handling actor.
func (c *Ctx) Log() *slog.Logger { return c.log }

// Actor returns the unique name of the handling actor.
func (c *Ctx) Actor() string { return c.cell.name }

// Seq returns the logical timestamp assigned to the current message at
// production time. It is zero for tick and flush invocations.
func (c *Ctx) Seq() uint64 { return c.seq }

// Time returns the wall-clock production time of the current message, or
// the invocation time for tick and flush handlers.
func (c *Ctx) Time() time.Time { return c.at }
