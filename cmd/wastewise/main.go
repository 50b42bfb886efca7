package main

import (
	"context"
	"os"

	"github.com/wastewise/wastewise-go/internal/cli/command"
)

func main() {
	os.Exit(command.Main(context.Background()))
}
