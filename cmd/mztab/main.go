// mztab - mzTab validation and conversion tool
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ChrisMcGann/mztab/cmd/mztab/cmd"
)

func main() {
	// MZTAB_* settings may come from a .env file in the working directory
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
