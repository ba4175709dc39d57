package main

import (
	"errors"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		log.Fatalln(err)
	}
}
