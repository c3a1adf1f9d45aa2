// Package simulation projects forward price paths under Geometric Brownian
// Motion and derives Value-at-Risk statistics from the simulated outcomes.
//
// Portfolio-mode simulation treats the portfolio as a single lognormal
// process driven by its scalar mean and volatility; the correlation
// structure captured in the covariance matrix is not used when projecting
// forward. This is a known simplification of the model, not an oversight.
//
// Paths are statistically independent, so path generation is partitioned
// across workers. Each path draws from its own deterministically seeded
// stream, making results reproducible for a given engine seed regardless of
// the worker count.
package simulation
