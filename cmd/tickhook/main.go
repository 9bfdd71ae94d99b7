// tickhook remote-controls an application's main loop: it can freeze the
// host between frames, run it one frame at a time and inject input.
//
// Usage:
//
//	tickhook host               - Run the demo host with an in-process agent
//	tickhook send <command>     - Send one command to a running agent
//	tickhook console            - Interactive controller console
//	tickhook serve              - Expose the console over SSH
//	tickhook journal [session]  - Browse recorded controller sessions
//
// Global flags:
//
//	--config <path>      - Configuration file (default: search order, then embedded)
//	--log-level <level>  - Override log.level (debug, info, warn, error)
//	--db <path>          - Journal database (default: journal.path)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfigPath string
	flagLogLevel   string
	flagDBPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickhook",
	Short: "tickhook - pause, step and drive a running main loop",
	Long: `tickhook hooks an application's per-frame tick so a controller can
pause it, advance it one frame at a time, override its delta time and
inject key and mouse input at frame boundaries.

Available commands:
  host     - Run the built-in demo host with the agent attached
  send     - Send one command to the agent
  console  - Interactive controller console
  serve    - Start SSH server exposing the console
  journal  - Browse recorded controller sessions

Examples:
  tickhook host
  tickhook send stop
  tickhook send step --wait stopped
  tickhook console
  tickhook journal`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to journal database (default: journal.path from config)")

	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(journalCmd)
}
