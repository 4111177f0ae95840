// Package pipeline runs an assessment as a sequence of steps.
//
// An assessment run goes through an optional input pre-check, report
// generation and normalization. Each stage is a Step that receives the
// shared model.Assessment and fills in its part of it. The pipeline checks
// the context between steps and records which steps ran.
//
// SimulationBatch runs attack simulations for several findings with
// bounded concurrency using errgroup.
package pipeline
