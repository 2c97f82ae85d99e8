// Package logger provides the user-facing logging API: a fluent Builder,
// immutable Logger values with leveled and formatted methods, and a
// package-level default logger.
package logger
