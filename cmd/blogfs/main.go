package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "render":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: blogfs render <file.md|->")
			os.Exit(1)
		}
		if err := runRender(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("blogfs %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`blogfs - serve a folder of markdown blogs over HTTP

Usage:
  blogfs [command] [arguments]

Commands:
  serve            Start the HTTP server (default)
  render <file>    Render a markdown file ("-" for stdin) to HTML on stdout
  version          Print the blogfs version
  help             Show this help message
`)
	if desc, err := configDescription(); err == nil {
		fmt.Println(desc)
	}
}
