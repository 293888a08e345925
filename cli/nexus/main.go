package main

import (
	"os"

	nexuscmder "github.com/Yash3561/Nexus/cmd/nexus"
)

func main() {
	cmd := nexuscmder.NewNexusCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
