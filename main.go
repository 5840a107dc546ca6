package main

import (
	"log"

	"github.com/openst/mosaic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
