// Package report provides report output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: colored text for terminal display
//   - MarkdownWriter: a structured Markdown summary with a severity chart
//   - JSONWriter and FullJSONWriter: structured JSON for tool integration
//   - TerraformWriter: the report's infrastructure code as one file
//   - RawWriter: the report text as generated
//   - TerminalWriter: the report body rendered with glamour
//
// Writers work on a model.Document, which bundles the parsed view of one
// report version with its request metadata. Writers implement the Writer
// interface, allowing them to be used interchangeably and composed for
// multi-format output.
package report
