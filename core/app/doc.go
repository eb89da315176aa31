// Package app provides a high-level wrapper for running one pipeline as an
// application: defaulted configuration, a named logger, OS signal handling
// and graceful shutdown.
//
// # Basic Usage
//
//	a, err := app.New(app.Config{Name: "averager"}, func(b *pipeline.Builder) error {
//	    timer := actors.Periodic(b, actors.PeriodicProp{Period: 1.0})
//	    printer := actors.Printer[float64](b, actors.PrinterProp{Topic: "time"})
//	    return pipeline.Connect(b, timer.TimeStamp, printer.Printable)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := a.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until the pipeline reaches quiescence, the process receives an
// interrupt signal, or [App.Stop] is called.
package app
