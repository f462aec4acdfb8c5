// Package harness provides utilities for integration testing the tomat CLI.
// It handles binary compilation, environment isolation, command execution
// and running a daemon for the duration of a test.
//
// Environment variables managed:
//   - XDG_RUNTIME_DIR: Isolated per test (short temp directory for the socket)
//   - XDG_CONFIG_HOME, XDG_DATA_HOME, XDG_STATE_HOME: Isolated per test
//   - TOMAT_CONFIG: Points at the test's config.toml
//   - TOMAT_TESTING: Set to 1 so the daemon plays no sounds and sends no notifications
//   - TOMAT_DEBUG: Disabled to reduce noise
package harness
