// Command jstrace runs an ESTree-shaped JSON program through the simulator
// and prints (or interactively pages through) the resulting step trace.
package main

import (
	"github.com/jstrace/jstrace/cmd/jstrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.ExitWithError(err.Error())
	}
}
