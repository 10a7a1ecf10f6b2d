// Package main is the entry point for the warehouse-utilization application
package main

import (
	"github.com/ethpandaops/warehouse-utilization/cmd"
)

func main() {
	cmd.Execute()
}
