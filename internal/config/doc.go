// Package config provides configuration structures and utilities for Sentinel.
// It defines the backend settings, assessment defaults and the .sentinel
// profile file, and resolves XDG directories for the session archive.
package config
