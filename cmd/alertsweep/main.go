package main

import (
	"context"
	"fmt"
	"os"

	"pricealerts/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(os.Stderr).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
