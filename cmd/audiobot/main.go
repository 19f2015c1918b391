package main

import (
	"fmt"
	"os"

	"github.com/m3rciful/audiobot/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "audiobot: %v\n", err)
		os.Exit(1)
	}
}
