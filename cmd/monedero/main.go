package main

import (
	"os"

	"github.com/monedero-app/monedero/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
