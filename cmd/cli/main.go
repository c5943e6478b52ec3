package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/fraud-atlas/pkg/runtime/terminal"
	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine for the CLI
	_ = godotenv.Load()

	cli := terminal.NewCLI(terminal.Options{
		Output: os.Stdout,
	})

	if err := cli.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
