package main

import (
	"os"

	"github.com/storehub/storehub/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
