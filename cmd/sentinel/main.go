// Package main provides the entry point for the Sentinel CLI.
//
// Sentinel audits architecture descriptions, policies and infrastructure code
// against compliance standards with a generative backend, keeps every
// report version, and lets the user refine the report in conversation.
//
// Usage:
//
//	sentinel assess --standard soc2 architecture.md
//	sentinel chat
//	sentinel export --format markdown -o report.md
//
// See --help for all available options.
package main

func main() {
	Execute()
}
