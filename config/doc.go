// Package config builds loggers from YAML, so record layout and output
// destinations can change without a recompile.
package config
