// =============================================================================
// Invoice Price Comparison - Main Entry Point
// =============================================================================
//
// This is the main entry point for the pricecmp CLI application. It
// delegates command execution to the cmd package.
//
// USAGE:
//   pricecmp extract      - Extract invoice line items from input/
//   pricecmp reconcile    - Compute the cheapest unit price per item
//   pricecmp version      - Display the application version
//
// ARCHITECTURE:
//   cmd/            : CLI command definitions (Cobra)
//   internal/       : Pipeline stages and their building blocks
//   pkg/            : Shared file-layout utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/invoice-price-comparison/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
