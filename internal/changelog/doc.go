// Package changelog maintains a Markdown changelog with a single
// "Unreleased" section that collects Feature and Bugfix entries until a
// version is released.
//
// This package implements:
//   - Parsing the document into typed section boundaries
//   - Entry insertion and version release as whole-file rewrites
//   - Backup snapshots before every mutation and restore from them
//   - Single-writer serialization, in process and across processes
//   - Terminal rendering of pending entries and releases
//
// Text outside the Unreleased subsections is preserved byte for byte.
package changelog
