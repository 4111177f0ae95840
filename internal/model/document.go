package model

import "time"

// Document bundles a parsed report with the metadata writers need.
type Document struct {
	// Raw is the unparsed report text.
	Raw string `json:"-"`

	// View is the parsed report.
	View ParsedView `json:"view"`

	// Metrics are the headline numbers for View.
	Metrics Metrics `json:"metrics"`

	// Capabilities gate optional exports.
	Capabilities Capabilities `json:"capabilities"`

	// Standards are the frameworks the report was audited against.
	Standards []Standard `json:"standards,omitempty"`

	// Persona is the audience the report was written for.
	Persona Persona `json:"persona,omitempty"`

	// GeneratedAt is the timestamp of the report version.
	GeneratedAt time.Time `json:"generated_at"`

	// Infrastructure holds the extracted hcl/terraform blocks, if any.
	Infrastructure []string `json:"infrastructure,omitempty"`
}
