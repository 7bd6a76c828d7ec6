// Command taskctl is the operator CLI for taskhub-api: permission catalog
// sync, password resets and client-side permission checks.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
