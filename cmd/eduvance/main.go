package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/eduvance/internal/app"
)

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	flag.Parse()

	app := app.New(*cfgFileName)
	app.Start()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR2)
	defer signal.Stop(c)

	for sig := range c {
		if sig == syscall.SIGUSR2 {
			go app.Dump()

			continue
		}

		fmt.Println("Received termination signal. Shutting down...")

		break
	}

	app.Stop()
	fmt.Println("done")
}
