// Package driver defines the capability facade for a live browser session.
//
// Everything downstream of a driver handle (the wire protocol to the browser,
// driver installation, screenshot encoding) belongs to the backing automation
// library and is reached only through the Driver interface. The pool and the
// analysis engine consume Driver values; they never touch the library
// directly.
//
// Two implementations exist: the Playwright adapter in this package, used in
// production, and the in-memory fake in the drivertest subpackage, used by
// tests across the repository.
package driver
