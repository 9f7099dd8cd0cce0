// export_test.go exports private functions for white-box testing.
package logger

// Exports for the error formatting pipeline.
var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)
