// Package logging builds the slog loggers bookminify writes through.
//
// Console output puts the component, archive, run, and stage at the front of
// each line so interleaved runs stay readable; the JSON format keeps every
// field as a plain key for log shippers. NewFromConfig writes to stderr and
// to bookminify.log under the configured log directory at the same time.
package logging
