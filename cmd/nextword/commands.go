package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bastiangx/nextword/internal/cli"
	"github.com/bastiangx/nextword/internal/logger"
	"github.com/bastiangx/nextword/internal/utils"
	"github.com/bastiangx/nextword/pkg/config"
	"github.com/bastiangx/nextword/pkg/dictionary"
	"github.com/bastiangx/nextword/pkg/server"
	"github.com/bastiangx/nextword/pkg/suggest"
	"github.com/bastiangx/nextword/pkg/trigram"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type globalOptions struct {
	debug      bool
	configPath string
}

// setup loads the config and applies the log level. defaultLevel is used
// when the config does not name one.
func (o *globalOptions) setup(defaultLevel string) (*config.Config, string) {
	cfg, cfgPath, err := config.LoadConfigWithPriority(o.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := cfg.Server.LogLevel
	if level == "" {
		level = defaultLevel
	}
	if o.debug {
		level = "debug"
		log.SetReportTimestamp(true)
	}
	if err := logger.SetLevel(level); err != nil {
		log.Warnf("Unknown log level %q, keeping %s", level, log.GetLevel())
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(cfgPath))
	return cfg, cfgPath
}

// modelPaths resolves the data dir against the usual install locations.
func modelPaths(cfg *config.Config) dictionary.Paths {
	dir := cfg.Data.Dir
	if pr, err := utils.NewPathResolver(); err == nil {
		for k, v := range pr.GetRuntimeInfo() {
			log.Debug("runtime", k, v)
		}
		dir = pr.GetDataDir(dir, cfg.Data.ModelFile)
	} else {
		log.Warnf("Failed to initialize path resolver: %v", err)
	}
	return dictionary.Paths{Dir: dir, IndexFile: cfg.Data.ModelFile, VocabFile: cfg.Data.VocabFile}
}

func loadPredictor(cfg *config.Config) (*suggest.Predictor, *dictionary.Model, dictionary.Paths) {
	paths := modelPaths(cfg)
	start := time.Now()
	model, err := dictionary.Load(paths)
	if err != nil {
		log.Error("Did you forget to run `nextword build`?")
		log.Fatalf("Failed to load model: %v", err)
	}
	log.Debugf("Model loaded in %s", time.Since(start))
	return suggest.NewPredictor(model), model, paths
}

func newBuildCmd(opts *globalOptions) *cobra.Command {
	var (
		corpus   string
		dataDir  string
		minCount int
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build model.bin and vocab.txt from a corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := opts.setup("info")
			if cmd.Flags().Changed("corpus") {
				cfg.Build.Corpus = corpus
			}
			if cmd.Flags().Changed("data") {
				cfg.Data.Dir = dataDir
			}
			if cmd.Flags().Changed("min-count") {
				cfg.Build.MinCount = minCount
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			trainer := trigram.NewTrainer(trigram.Options{
				MinCount:      uint32(cfg.Build.MinCount),
				ProgressEvery: cfg.Build.ProgressEvery,
			})
			log.Infof("Building from %s (min count %d)", cfg.Build.Corpus, cfg.Build.MinCount)
			model, err := trainer.TrainFile(ctx, cfg.Build.Corpus)
			if err != nil {
				if errors.Is(err, ctx.Err()) {
					return fmt.Errorf("build interrupted, nothing written: %w", err)
				}
				return err
			}

			if err := utils.EnsureDir(cfg.Data.Dir); err != nil {
				return fmt.Errorf("create data dir %s: %w", cfg.Data.Dir, err)
			}
			paths := dictionary.Paths{Dir: cfg.Data.Dir, IndexFile: cfg.Data.ModelFile, VocabFile: cfg.Data.VocabFile}
			if err := dictionary.Save(paths, model); err != nil {
				return err
			}

			r := trainer.Report()
			log.Info("Build done",
				"lines", r.Lines,
				"tokens", r.Tokens,
				"words", r.Words,
				"trigrams", r.Trigrams,
				"records", r.Records,
				"took", r.Elapsed.Round(time.Millisecond))
			log.Infof("Wrote %s and %s", paths.Index(), paths.Vocab())
			return nil
		},
	}

	def := config.DefaultConfig()
	cmd.Flags().StringVar(&corpus, "corpus", def.Build.Corpus, "Corpus text file, one sentence per line")
	cmd.Flags().StringVar(&dataDir, "data", def.Data.Dir, "Output directory for the model files")
	cmd.Flags().IntVar(&minCount, "min-count", def.Build.MinCount, "Drop trigrams seen fewer times than this")
	return cmd
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		transport string
		addr      string
		dataDir   string
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Serve predictions over HTTP or msgpack IPC",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := opts.setup("warn")
			if cmd.Flags().Changed("transport") {
				cfg.Server.Transport = transport
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("data") {
				cfg.Data.Dir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			predictor, model, paths := loadPredictor(cfg)
			stats := predictor.Stats()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			g, ctx := errgroup.WithContext(ctx)

			switch cfg.Server.Transport {
			case config.TransportIPC:
				log.Debug("spawning IPC")
				g.Go(func() error {
					// input closed means the client is gone
					defer stop()
					return server.NewServer(predictor, os.Stdin, os.Stdout).Start(ctx)
				})
			default:
				if !opts.debug {
					gin.SetMode(gin.ReleaseMode)
				}
				timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
				srv := server.NewHTTPServer(predictor, timeout)
				g.Go(func() error {
					return srv.ListenAndServe(ctx, cfg.Server.Addr)
				})
			}

			g.Go(func() error {
				<-ctx.Done()
				log.Debug("Exiting...")
				return nil
			})

			showStartupInfo(paths.Dir, cfg.Server.Transport, stats["records"], stats["words"])
			log.Debug("model", "contexts", model.Stats().Contexts)
			return g.Wait()
		},
	}

	def := config.DefaultConfig()
	cmd.Flags().StringVar(&transport, "transport", def.Server.Transport, "Transport: http or ipc")
	cmd.Flags().StringVar(&addr, "addr", def.Server.Addr, "HTTP listen address")
	cmd.Flags().StringVar(&dataDir, "data", def.Data.Dir, "Directory containing model.bin and vocab.txt")
	return cmd
}

func newCLICmd(opts *globalOptions) *cobra.Command {
	var (
		limit   int
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Type context and see predictions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := opts.setup("warn")
			if cmd.Flags().Changed("limit") {
				cfg.CLI.DefaultLimit = limit
			}
			if cmd.Flags().Changed("data") {
				cfg.Data.Dir = dataDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log.SetReportTimestamp(false)

			predictor, _, _ := loadPredictor(cfg)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			h := cli.NewInputHandler(predictor, predictor.Vocabulary(), os.Stdin, os.Stdout, cfg.CLI.DefaultLimit, cfg.CLI.ShowCounts)
			return h.Start(ctx)
		},
	}

	def := config.DefaultConfig()
	cmd.Flags().IntVar(&limit, "limit", def.CLI.DefaultLimit, "Number of suggestions to show")
	cmd.Flags().StringVar(&dataDir, "data", def.Data.Dir, "Directory containing model.bin and vocab.txt")
	return cmd
}

func newInspectCmd(opts *globalOptions) *cobra.Command {
	var (
		top     int
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print model statistics and the busiest contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := opts.setup("warn")
			if cmd.Flags().Changed("data") {
				cfg.Data.Dir = dataDir
			}
			predictor, model, paths := loadPredictor(cfg)
			vocabulary := predictor.Vocabulary()
			st := model.Stats()

			out := cmd.OutOrStdout()
			for _, file := range []string{paths.Index(), paths.Vocab()} {
				kind := "unrecognized extension"
				if format, err := dictionary.DetectFileFormat(file); err == nil {
					kind = format.String()
				}
				fmt.Fprintf(out, "%s (%s)\n", file, kind)
			}
			fmt.Fprintln(out)

			table := cli.NewTable(out, []string{"RECORDS", "WORDS", "CONTEXTS", "MAX CONTINUATIONS", "MAX COUNT"})
			table.Append([]string{
				strconv.Itoa(st.Records),
				strconv.Itoa(st.Words),
				strconv.Itoa(st.Contexts),
				strconv.Itoa(st.MaxContinuations),
				strconv.FormatUint(uint64(st.MaxCount), 10),
			})
			table.Render()

			if top <= 0 || st.Contexts == 0 {
				return nil
			}
			fmt.Fprintln(out)
			var data [][]string
			for _, info := range model.TopContexts(top) {
				w1, _ := vocabulary.Word(info.W1)
				w2, _ := vocabulary.Word(info.W2)
				best := predictor.Predict(w1, w2)
				data = append(data, []string{
					w1 + " " + w2,
					strconv.Itoa(info.Continuations),
					strconv.FormatUint(info.Total, 10),
					fmt.Sprint(best),
				})
			}
			table = cli.NewTable(out, []string{"CONTEXT", "CONTINUATIONS", "TOTAL", "PREDICTS"})
			table.AppendBulk(data)
			table.Render()
			return nil
		},
	}

	def := config.DefaultConfig()
	cmd.Flags().IntVar(&top, "top", 10, "Number of contexts to list (0 for none)")
	cmd.Flags().StringVar(&dataDir, "data", def.Data.Dir, "Directory containing model.bin and vocab.txt")
	return cmd
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the active config, or reset it to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				path, err := config.RebuildConfigFile(opts.configPath)
				if err != nil {
					return fmt.Errorf("reset config: %w", err)
				}
				log.Infof("Wrote default config to %s", path)
				return nil
			}

			cfg, cfgPath := opts.setup("warn")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", config.GetActiveConfigPath(cfgPath))
			table := cli.NewTable(out, []string{"KEY", "VALUE"})
			table.AppendBulk([][]string{
				{"server.addr", cfg.Server.Addr},
				{"server.transport", cfg.Server.Transport},
				{"server.log_level", cfg.Server.LogLevel},
				{"server.shutdown_timeout", strconv.Itoa(cfg.Server.ShutdownTimeout)},
				{"build.corpus", cfg.Build.Corpus},
				{"build.min_count", strconv.Itoa(cfg.Build.MinCount)},
				{"build.progress_every", strconv.Itoa(cfg.Build.ProgressEvery)},
				{"data.dir", cfg.Data.Dir},
				{"data.model_file", cfg.Data.ModelFile},
				{"data.vocab_file", cfg.Data.VocabFile},
				{"cli.default_limit", strconv.Itoa(cfg.CLI.DefaultLimit)},
				{"cli.show_counts", strconv.FormatBool(cfg.CLI.ShowCounts)},
			})
			table.Render()
			if err := cfg.Validate(); err != nil {
				log.Warnf("Config is invalid: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Overwrite the config file with defaults")
	return cmd
}
