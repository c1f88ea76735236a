// @title Road Accident Dashboard API
// @version 1.0
// @description Filters, summaries and chart views over a road accident dataset.
// @host localhost:8080
// @BasePath /api/v1

//go:generate swag init -g main.go -d ./,../../internal/api/handler -o ../../internal/api/docs

package main

import (
	"fmt"
	"os"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}
