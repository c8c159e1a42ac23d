// Command sheetsite serves a website built from Google Sheets.
package main

import (
	"os"

	"github.com/634252452/Sheets2Website/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
