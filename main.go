package main

import (
	"os"

	"sonar/api"
	"sonar/cli"
	"sonar/logging"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		if err := api.Run(); err != nil {
			logging.Logger().Error("server exited", "error", err)
			os.Exit(1)
		}
		return
	}
	cli.Run()
}
