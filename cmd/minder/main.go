// Minder: personal knowledge and task MCP server
//
// Stores notes, tasks, and standing instructions in a local SQLite
// database and serves ranked, semantically retrieved context to any
// MCP-capable AI tool (Claude Code, Cursor, VS Code Copilot, ...).
//
// Usage:
//
//	minder serve    # Start MCP server (stdio transport)
//	minder update   # Update to the latest version
package main

import (
	"fmt"
	"os"

	"github.com/dmreyes/minder/internal/config"
	minderserver "github.com/dmreyes/minder/internal/server"
	"github.com/dmreyes/minder/internal/updater"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("minder v%s\n", minderserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, cleanup, err := minderserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return server.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. This runs in a goroutine during
// "serve" and is best-effort — network failures are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(minderserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: minder update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(minderserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(minderserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart minder to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Minder v%s — personal knowledge and task MCP server

Usage:
  minder serve    Start the MCP server (stdio transport)
  minder update   Update to the latest version

Configuration (environment or .env):
  MINDER_DATA_DIR      Database directory (default: ~/.minder)
  MINDER_OLLAMA_HOST   Ollama endpoint (default: http://localhost:11434)
  MINDER_EMBED_MODEL   Embedding model (default: nomic-embed-text)
  MINDER_CACHE_TTL     Instruction cache TTL (default: 5m)
  MINDER_CACHE_SIZE    Instruction cache entries (default: 256)

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "minder": {
        "command": "minder",
        "args": ["serve"]
      }
    }
  }

Learn more: https://github.com/dmreyes/minder
`, minderserver.Version)
}
