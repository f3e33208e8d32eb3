// Package service runs the host-side subsystems around an emulated machine:
// audio output, display front ends, save persistence.
package service

// Service is a long-lived host subsystem.
//
// Lifecycle:
//  1. Construction (package constructor)
//  2. Init(args...) - configuration already parsed from env and flags
//  3. Start() - launch background goroutines
//  4. [machine runs]
//  5. Stop() - halt goroutines, release devices
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must Init before this one
	Dependencies() []string

	// Init configures the service; args are service-specific
	Init(args ...any) error

	// Start begins operation after every service has initialized
	Start() error

	// Stop halts the service. Must be idempotent.
	Stop() error
}
