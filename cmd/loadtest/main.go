// Command loadtest measures pipeline throughput: it pushes N messages
// through a chain of relay stages and reports the sustained rate.
//
// Tunables via environment: N (messages), STAGES (chain length),
// QUEUE (per-edge queue capacity), FANOUT (sinks on the last stage).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/farm-ng/hollywood/core/pipeline"
)

var (
	n        = getEnvInt("N", 1_000_000)
	stages   = getEnvInt("STAGES", 4)
	queue    = getEnvInt("QUEUE", 1024)
	fanout   = getEnvInt("FANOUT", 1)
	logLevel = slog.LevelWarn
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	received := make([]int, fanout)
	p, err := pipeline.Configure(pipeline.Options{Logger: log, QueueSize: queue}, func(b *pipeline.Builder) error {
		hs := pipeline.Register(b, "source", struct{}{}, struct{}{})
		out := pipeline.OutboundPort[int](hs, "out")
		pipeline.Tick(hs, 0, func(ctx *pipeline.Ctx, _ struct{}, _ *struct{}) error {
			for i := 0; i < n; i++ {
				if err := out.Send(ctx, i); err != nil {
					return err
				}
			}
			return pipeline.ErrDone
		})

		for s := 0; s < stages; s++ {
			h := pipeline.Register(b, "relay", struct{}{}, struct{}{})
			relayOut := pipeline.OutboundPort[int](h, "out")
			relayIn := pipeline.InboundPort(h, "in", func(ctx *pipeline.Ctx, _ struct{}, _ *struct{}, v int) error {
				return relayOut.Send(ctx, v)
			})
			if err := pipeline.Connect(b, out, relayIn); err != nil {
				return err
			}
			out = relayOut
		}

		for f := 0; f < fanout; f++ {
			h := pipeline.Register(b, "sink", struct{}{}, struct{}{})
			in := pipeline.InboundPort(h, "in", func(ctx *pipeline.Ctx, _ struct{}, _ *struct{}, _ int) error {
				received[f]++
				return nil
			})
			if err := pipeline.Connect(b, out, in); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("configuration failed", slog.Any("error", err))
		os.Exit(1)
	}

	start := time.Now()
	if err := p.Run(context.Background()); err != nil {
		log.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
	elapsed := time.Since(start)

	total := 0
	for _, r := range received {
		total += r
	}
	hops := n * (stages + fanout)
	fmt.Printf("messages: %d, stages: %d, fanout: %d, queue: %d\n", n, stages, fanout, queue)
	fmt.Printf("delivered: %d, elapsed: %s, rate: %.0f msg/s (%.0f hops/s)\n",
		total, elapsed, float64(total)/elapsed.Seconds(), float64(hops)/elapsed.Seconds())
}
