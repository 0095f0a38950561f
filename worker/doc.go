/*
Package worker runs a traced job on a schedule.

The server uses it to publish gauges from the system metric producers, such as the
access log sink:

	worker.Run(ctx, worker.Config{
		Name:     "metric-loop",
		Schedule: backoff.NewConstantBackOff(10 * time.Second),
		Func:     publish,
	})
*/
package worker
