//go:build cli
// +build cli

package main

import (
	_ "github.com/nunomansilhas/ProduFlow/custom"

	"github.com/nunomansilhas/ProduFlow/cmd"
	"github.com/nunomansilhas/ProduFlow/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
