package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/tempdist/tempdist/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.RunMenu(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
