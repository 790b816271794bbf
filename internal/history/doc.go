// Package history persists a ledger of produced archives in SQLite.
//
// Every successful build or autofill appends one row naming the operation,
// the output path, how many scenes it holds and how many warnings were
// raised. The ledger is informational; commands that write archives never
// fail because recording history failed.
package history
