// Command pilpbatch fans a fixed batch of solves out across internal/batch's
// worker pool, reporting progress through zap the way the retrieved
// wdfday-personalfinance-be service layer wires its scheduler: a *zap.Logger
// passed in at construction, never a package-level global.
package main

import (
	"context"
	"flag"
	"math/big"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/gitrdm/pilpcore/internal/batch"
	"github.com/gitrdm/pilpcore/pkg/pilp"
)

func row(vals ...int64) pilp.Row {
	r := make(pilp.Row, len(vals))
	for i, v := range vals {
		r[i] = big.NewInt(v)
	}
	return r
}

func builtinJobs() []batch.Job {
	return []batch.Job{
		{
			Name: "bounded-min",
			Problem: &pilp.Problem{
				NParam: 1,
				NVar:   1,
				Ineq:   []pilp.Row{row(0, 0, 1), row(0, 1, -1)},
			},
		},
		{
			Name: "bounded-max",
			Problem: &pilp.Problem{
				NParam: 1,
				NVar:   1,
				Ineq:   []pilp.Row{row(0, 0, 1), row(0, 1, -1)},
			},
			Options: pilp.Options{Max: true},
		},
		{
			Name: "split-div",
			Problem: &pilp.Problem{
				NParam: 1,
				NVar:   1,
				Eq:     []pilp.Row{row(0, -1, 2)},
			},
		},
		{
			Name: "max-of-two",
			Problem: &pilp.Problem{
				NParam: 2,
				NVar:   1,
				Ineq:   []pilp.Row{row(0, -1, 0, 1), row(0, 0, -1, 1)},
			},
		},
	}
}

func runBatch(logger *zap.Logger, workers int) {
	pool := batch.NewPool(workers)
	jobs := builtinJobs()

	go func() {
		ctx := context.Background()
		for _, j := range jobs {
			if err := pool.Submit(ctx, j); err != nil {
				logger.Error("submit failed", zap.String("job", j.Name), zap.Error(err))
			}
		}
		pool.Shutdown()
	}()

	for res := range pool.Results() {
		if res.Err != nil {
			logger.Error("job failed",
				zap.String("job", res.Name),
				zap.Duration("duration", res.Duration),
				zap.Error(res.Err),
			)
			continue
		}
		logger.Info("job completed",
			zap.String("job", res.Name),
			zap.Duration("duration", res.Duration),
			zap.Int("pieces", len(res.Relation.Pieces)),
			zap.Int("empty_regions", len(res.Relation.Empty)),
		)
	}

	logger.Info("batch finished", zap.String("stats", pool.Stats().String()))
}

func main() {
	workers := flag.Int("workers", 0, "worker pool size (0 = runtime.NumCPU())")
	every := flag.String("every", "", "cron schedule (5-field, e.g. \"*/5 * * * *\") to re-run the batch; empty runs once")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if *every == "" {
		runBatch(logger, *workers)
		return
	}

	c := cron.New()
	_, err = c.AddFunc(*every, func() { runBatch(logger, *workers) })
	if err != nil {
		logger.Fatal("invalid cron schedule", zap.String("schedule", *every), zap.Error(err))
	}
	logger.Info("scheduler started", zap.String("schedule", *every))
	c.Start()

	select {} // run forever; terminate the process to stop
}
