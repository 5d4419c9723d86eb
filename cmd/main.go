// Package main is the entry point for the context-engine CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/convoflow/context-engine/internal/config"
	"github.com/convoflow/context-engine/internal/monitoring"
)

const version = "0.3.0"

func main() {
	_ = godotenv.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "demo":
			runDemo(os.Args[2:])
			return
		case "inspect":
			runInspect(os.Args[2:])
			return
		case "version", "-v", "--version":
			fmt.Printf("context-engine %s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	printHelp()
}

func printHelp() {
	fmt.Print(`context-engine - conversational context window selection

Usage:
  context-engine demo [-config FILE] [-query TEXT]
  context-engine inspect [-config FILE] [-query TEXT] HISTORY.json
  context-engine version

Commands:
  demo      run the built-in sample conversation through the engine
  inspect   run a history file (JSON array of messages) through the engine
  version   print the version
`)
}

// loadConfig parses flags shared by demo and inspect and returns the
// loaded configuration plus the remaining positional arguments.
func loadConfig(args []string) (*config.Config, string, []string) {
	fs := flag.NewFlagSet("context-engine", flag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	query := fs.String("query", "Tell me more about that", "candidate query for classification and enhancement")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	monitoring.Global(cfg.Logging)
	log.Debug().Str("config", *configPath).Msg("Configuration loaded")

	return cfg, *query, fs.Args()
}
