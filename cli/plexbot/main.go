package main

import (
	"os"

	plexbotcmder "github.com/papercomputeco/plexbot/cmd/plexbot"
)

func main() {
	cmd := plexbotcmder.NewPlexbotCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
