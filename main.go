// =============================================================================
// Ledger Checker - Main Entry Point
// =============================================================================
//
// USAGE:
//   ledgercheck process   - Check every export in the input directory
//   ledgercheck validate  - Show the resolved configuration and profiles
//   ledgercheck version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : ledger model, normalizer, validators, currency, report,
//                  readers and writers, and the checker pipeline
//   - pkg/       : file management shared utilities
//   - configs/   : ledger profile YAML files
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/ledger-checker/cmd"
)

func main() {
	cmd.Execute()
}
