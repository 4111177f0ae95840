// Package secrets detects credentials and key material in assessment
// material before it leaves the machine.
//
// Architecture descriptions and infrastructure code pasted into an
// assessment regularly carry private keys, cloud access keys or API
// tokens. The Scanner reports them so the CLI can warn, and Redact masks
// them so the backend never receives the secret itself.
package secrets
