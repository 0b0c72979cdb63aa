package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aussiebroadwan/sfconnect/internal/app"
	"github.com/aussiebroadwan/sfconnect/pkg/sfclient"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: sfconnect <operation> [options-json]\n\noperations:\n  %s\n",
		strings.Join(sfclient.Operations(), "\n  "))
}

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		usage()
		os.Exit(2)
	}

	operation := os.Args[1]
	var rawOptions string
	if len(os.Args) == 3 {
		rawOptions = os.Args[2]
	}

	application, err := app.New(app.LoadConfig())
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	runErr := application.Run(context.Background(), operation, rawOptions)
	if err := application.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("%s: %v", operation, runErr)
	}
}
