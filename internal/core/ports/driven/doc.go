// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ReferenceStore: Reference library persistence (SQLite, JSON document, memory)
//   - AssetStore: Binary asset persistence on disk
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FingerprintExtractor: Only needed when the server verifies client
//     fingerprints or when a driving adapter hashes local files.
//   - Purger: Implemented only by stores that soft delete (SQLite).
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
