package actors

import (
	"fmt"
	"io"
	"os"

	"github.com/farm-ng/hollywood/core/pipeline"
)

// PrinterProp configures a [Printer] actor.
type PrinterProp struct {
	// Topic is printed in front of every value.
	Topic string
	// Writer receives the printed lines; os.Stdout when nil.
	Writer io.Writer
}

// PrinterActor is the port surface of a registered printer actor.
type PrinterActor[T any] struct {
	Handle *pipeline.Handle[PrinterProp, struct{}]

	// Printable consumes the values to print.
	Printable *pipeline.Inbound[T]
}

// Printer registers a terminal sink that writes every received value as
// "topic: value", one line each.
func Printer[T any](b *pipeline.Builder, prop PrinterProp) *PrinterActor[T] {
	if prop.Topic == "" {
		prop.Topic = "generic"
	}
	if prop.Writer == nil {
		prop.Writer = os.Stdout
	}

	h := pipeline.Register(b, "printer", prop, struct{}{})
	printable := pipeline.InboundPort(h, "printable",
		func(ctx *pipeline.Ctx, prop PrinterProp, _ *struct{}, v T) error {
			_, err := fmt.Fprintf(prop.Writer, "%s: %v\n", prop.Topic, v)
			return err
		})
	return &PrinterActor[T]{Handle: h, Printable: printable}
}
