/*
Package resilience provides a circuit breaker for operations that fail in
streaks, such as rebuilding engine runtimes after a reset failure.

# States

  - Closed: attempts pass through and failures are counted
  - Open: attempts fail immediately with ErrOpen until the open timeout passes
  - Half-Open: a limited number of probe attempts decide whether to close again

	Closed --[trip]-> Open --[timeout]-> Half-Open --[probes succeed]-> Closed
	                                        |
	                                    [failure]
	                                        v
	                                       Open

# Usage

	b := resilience.New("runtime-rebuild", resilience.Settings{
		OpenTimeout: 30 * time.Second,
		Trip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	rt, err := resilience.Execute(b, func() (*engine.Runtime, error) {
		return engine.New(cfg)
	})
*/
package resilience
