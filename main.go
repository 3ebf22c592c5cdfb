package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gerunddev/uniast/internal/commands"
	"github.com/gerunddev/uniast/styles"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.App().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ "+err.Error()))
		stop()
		os.Exit(1)
	}
}
