package ports

// EmailIntake defines the interface for a long-running email ingestion
// endpoint feeding the triage pipeline.
type EmailIntake interface {
	// Start starts the intake service
	Start() error

	// Stop stops the intake service
	Stop() error
}
