// Package xlog centralizes the logrus logger used across the stack so every
// package logs through the same formatter and level.
package xlog

import "github.com/sirupsen/logrus"

var std = logrus.New()

// Get returns the shared logger, pre-configured with the package's fields.
func Get(component string) *logrus.Entry {
	return std.WithField("component", component)
}

// SetLevel adjusts the shared logger's verbosity, e.g. for test runs that
// want to silence broker chatter.
func SetLevel(l logrus.Level) {
	std.SetLevel(l)
}
