// Package output renders command results for the wastewise CLI.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: tabular rendering driven by `json` and `table` struct tags
//   - json.go, yaml.go: machine-readable output
//   - spinner.go: activity indicator for slow calls
//   - progress.go: byte counter for report and export downloads
//
// A field tagged `table:"-"` never appears in a table; `table:"wide"`
// appears only with --wide.
package output
