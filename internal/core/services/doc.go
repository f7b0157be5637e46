// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The similarity engine lives here too: it is pure computation over
// fingerprints and needs no adapter.
package services
