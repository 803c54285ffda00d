package main

import (
	"fmt"
	"log"

	"github.com/common-nighthawk/go-figure"
	"github.com/meridianapps/meridian/internal/auth/app"
)

func main() {
	banner := figure.NewFigure("meridian", "cybermedium", true)
	banner.Print()
	fmt.Println()

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
