// Package cmd implements the graphassert CLI commands using Cobra.
//
// Available commands:
//   - represent: Print the sorted representations of a fixture's entities
//   - stats: Apply a fixture to a graph store and check the query statistics
//   - validate: Check fixture files without applying them
//   - version: Show graphassert version information
//
// Global flags select the config file, the graph store connection string,
// the output format and verbosity.
package cmd
