// Package records loads a drill-hole CSV and enriches every row with its
// drilling duration and hardness rating.
//
// Processor.LoadAndProcess reads the whole input, normalizes header names
// (trim + lowercase), checks that the configured start/end timestamp columns
// exist, parses both timestamps per row, and derives:
//
//	duration_minutes   (end − start) in minutes, negative if inverted
//	hardness_category  hardness.Classify(duration_minutes)
//	hardness_index     hardness.Index(duration_minutes)
//
// Failures are returned as *ParseError, *MissingColumnError, *TimeParseError
// or *DerivationError. There is no partial success: a table is returned only
// when every row was enriched.
//
// A Table is immutable once returned. Where builds a new Table; accessors
// return copies.
package records
