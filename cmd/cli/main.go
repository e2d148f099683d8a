package main

import (
	"log"

	"github.com/airborne/server/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
