// Command web runs the renderer without a window and serves the live preview.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/df07/go-particle-renderer/internal/app"
	"github.com/df07/go-particle-renderer/internal/config"
)

func main() {
	err := app.Execute("particles-web", os.Args[1:], os.Stdout, os.Stderr, func(f *config.Flags) {
		if f.Display == "" {
			f.Display = config.DisplayHeadless
		}
		if f.Serve == "" {
			f.Serve = "127.0.0.1:8080"
		}
	})
	if errors.Is(err, app.ErrUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
