package main

import (
	"os"

	"github.com/boardkit/boardclient/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
