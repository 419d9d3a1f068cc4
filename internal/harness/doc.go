// Package harness runs YAML-defined convergence scenarios: a swarm
// configuration plus expectations about the outcome (converged or not,
// synchronized-ratio bounds, spread bounds). Scenarios pin the
// experimental claims - baseline converges, random noise does not,
// silence degenerates to the zero convention - as data rather than as
// hand-written test bodies.
//
// Scenario files use strict decoding: unknown fields are rejected so a
// typo in an expectation never silently weakens a scenario.
package harness
