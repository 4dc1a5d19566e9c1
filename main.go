package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/arin/penman/cmd"
	"github.com/arin/penman/internal/prompt"
	"github.com/fatih/color"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.SetVersion(version)
	if err := cmd.Execute(ctx); err != nil {
		var ve *prompt.ValidationError
		if errors.As(err, &ve) {
			color.New(color.FgYellow).Fprintf(os.Stderr, "Warning: %s\n", ve.Message)
		} else {
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
