// Package operations schedules and runs the survey pipeline as a DAG of steps.
//
// The pipeline has one extraction step, extract_and_load_data, and five
// analysis steps that each depend only on it. Steps are registered in a
// Registry, which orders them into dependency levels. The Manager executes a
// run level by level, either sequentially or with bounded parallelism, and
// applies a per-attempt timeout and a fixed retry budget to every step.
//
// Step outcomes:
//
//   - completed: Execute returned nil
//   - skipped: Execute returned a NewSkipError, or a dependency in the same
//     run did not complete
//   - failed: retries exhausted on a retryable error, or a non-retryable error
//
// A run fails when any step fails. Skips do not fail a run.
//
// The extracted dataset reaches the analysis steps either through the run
// state (HandoffMemory) or through a serialized file (HandoffFile). A run
// that names a single step assumes its dependencies are satisfied; analysis
// steps then read the hand-off file.
//
// Every run is recorded in a JobStore, and snapshots are pushed through the
// StatusBroadcaster to an optional WebSocketHub. The Scheduler triggers full
// runs on an interval and rejects overlapping runs.
//
// Example usage:
//
//	registry, _ := operations.NewPipelineRegistry(loader, suite, logger, &operations.StageOptions{
//		Handoff:     operations.HandoffFile,
//		HandoffFile: paths.HandoffFile,
//	})
//	manager := operations.NewManager(hub, registry, operations.ConfigFromPipeline(cfg.Pipeline))
//	resp, err := manager.Execute(ctx, operations.OperationRequest{Trigger: operations.TriggerCLI})
package operations
