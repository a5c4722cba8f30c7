package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"todo-tracker/internal/client"
	"todo-tracker/internal/config"
	"todo-tracker/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	f, err := tea.LogToFile("todotui.log", "todotui")
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	log.Printf("[info] using api %s", cfg.APIURL)
	if err := ui.Run(context.Background(), client.New(cfg.APIURL)); err != nil {
		log.Printf("tui: %v", err)
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}
