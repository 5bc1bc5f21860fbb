package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-particle-renderer/internal/app"
	"github.com/df07/go-particle-renderer/internal/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 on success, 2 for usage errors, 1 otherwise
func run(args []string, stdout, stderr io.Writer) int {
	err := app.Execute("particles", args, stdout, stderr, nil)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrUsage):
		return 2
	default:
		logger.Error("fatal", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}
