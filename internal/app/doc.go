// Package app wires the pipeline host together and manages its lifecycle.
//
// The Application container loads configuration, initializes logging and
// OpenTelemetry, and builds the loader, the analyzer suite, the operations
// Manager, the interval Scheduler, the WebSocket hub and the HTTP router.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, COLDDRINKS_* environment)
//  2. Initialize logging and observability
//  3. Ensure output directories exist
//  4. Build the pipeline registry and the Manager
//  5. Create the Scheduler, router and HTTP server
//
// # Usage
//
// One-shot commands call RunPipeline or RunStep and then Stop. The daemon
// calls Run, which starts the scheduler and the status server and blocks
// until SIGINT or SIGTERM:
//
//	app, err := app.NewApplication(app.Options{ConfigFile: path})
//	if err != nil {
//	    return err
//	}
//	return app.Run()
package app
