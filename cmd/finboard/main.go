package main

import (
	"context"
	"fmt"
	"os"

	"finboard-go/internal/bootstrap"
)

func main() {
	if err := bootstrap.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "finboard failed: %v\n", err)
		os.Exit(1)
	}
}
