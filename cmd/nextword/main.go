// Copyright 2025 The NextWord Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the nextword command: it builds a trigram index from
a text corpus and serves next-word predictions from it.

# Usage

Build model.bin and vocab.txt from a corpus, one sentence per line:

	nextword build --corpus data.txt --data data/ --min-count 2

Serve predictions over HTTP (default 127.0.0.1:3000):

	nextword serve
	curl -d '{"context":"i want to"}' localhost:3000/predict

or over msgpack on stdin/stdout for editor plugins:

	nextword serve --transport ipc

Try a model interactively, or look at what it contains:

	nextword cli
	nextword inspect --top 20

# Model files

model.bin is a flat array of 16-byte records (w1, w2, w3, count as
little-endian uint32) sorted by context and then by descending count.
vocab.txt lists one word per line; line i is word id i. Both files are
written atomically, so a failed build never leaves a half written model.

# Configuration

Settings live in a TOML file created with defaults on first run
(~/.config/nextword/config.toml on linux). Flags always win over the file:

	[server]
	addr = "127.0.0.1:3000"
	transport = "http"
	log_level = "warn"

	[build]
	corpus = "data.txt"
	min_count = 2

	[data]
	dir = "data"

All logs go to stderr; stdout carries IPC traffic and command output.
*/
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
	AppName = "nextword"
	gh      = "https://github.com/bastiangx/nextword"
)

func main() {
	log.SetOutput(os.Stderr)
	if err := NewCLI().ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

// NewCLI builds the command tree.
func NewCLI() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: "Trigram next-word prediction: build an index, serve predictions",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Toggle debug logging")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.toml")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(
		newBuildCmd(opts),
		newServeCmd(opts),
		newCLICmd(opts),
		newInspectCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show current version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			showVersion()
		},
	}
}

func showVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ NextWord ] Predicts the next word from the last two!")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available commands")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info once the model is loaded.
func showStartupInfo(dataDir, transport string, records, words int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", dataDir)
	log.Info("model", "records", records, "words", words)
	log.Infof("transport: %s", transport)
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
