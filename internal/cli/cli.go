package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"qfparse/internal/cache"
	"qfparse/internal/config"
	"qfparse/internal/filewalker"
	"qfparse/internal/fingerprint"
	"qfparse/internal/graph"
	"qfparse/internal/model"
	"qfparse/internal/parser"
	"qfparse/internal/serialize"
	"qfparse/internal/store"
	"qfparse/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:          "qfparse",
		Short:        "Parse and catalogue Quickfort blueprint spreadsheets",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return setupLogging(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides QF_LOG_LEVEL)")

	conf := func() *config.Config { return cfg }
	rootCmd.AddCommand(
		dumpCmd(conf),
		inspectCmd(conf),
		checkCmd(conf),
		ingestCmd(conf),
		similarCmd(conf),
		sectionsCmd(conf),
	)
	return rootCmd
}

// setupLogging configures the global logger.
func setupLogging(out io.Writer, level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(lvl)
	if format == "json" {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out})
	}
	return nil
}

func newImporter(cfg *config.Config) *parser.CSVImporter {
	return parser.NewCSVImporter(parser.WithMaxExpansion(cfg.MaxExpansion))
}

func dumpCmd(conf func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Parse a blueprint and print its structural JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath, _ := cmd.Flags().GetString("output")
			return runDump(conf(), args[0], outputPath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the document to this path instead of stdout")
	return cmd
}

func runDump(cfg *config.Config, path, outputPath string, stdout io.Writer) error {
	res, err := newImporter(cfg).Parse(path)
	if err != nil {
		return err
	}

	out := stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := serialize.Encode(out, res.Project); err != nil {
		return fmt.Errorf("dump %s: %w", path, err)
	}
	if outputPath != "" {
		log.Info().Str("file", path).Str("output", outputPath).Msg("Document written")
	}
	return nil
}

func inspectCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize the sections and layers of a blueprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newImporter(conf()).Parse(args[0])
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), res)
		},
	}
}

func writeSummary(out io.Writer, res *parser.ParseResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "#\tMODE\tLABEL\tHIDDEN\tSTART\tLAYERS")
	for i, s := range res.Project.Sections() {
		layers := "-"
		if gs, ok := s.(*model.GridSection); ok {
			layers = fmt.Sprint(len(gs.Layers()))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\t%s\n", i+1, s.Mode(), s.Label(), s.Hidden(), s.Start(), layers)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "SECTION\tZ\tWIDTH\tHEIGHT\tCELLS")
	for _, s := range res.Project.Sections() {
		gs, ok := s.(*model.GridSection)
		if !ok {
			continue
		}
		for _, l := range gs.Layers() {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s.Label(), l.RelativeZ(), l.Width(), l.Height(), l.CellCount())
		}
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "diagnostics: %d\n", len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(tw, "  %s\n", d)
	}
	return tw.Flush()
}

func checkCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check <directory>",
		Short: "Parse every blueprint under a directory and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runCheck(ctx, conf(), args[0])
		},
	}
}

// parseAll walks dir and parses every blueprint with the worker pool.
func parseAll(ctx context.Context, cfg *config.Config, dir string) ([]worker.Task[filewalker.FileEntry, *parser.ParseResult], error) {
	w := filewalker.NewWalker(newImporter(cfg))
	entries, err := w.Walk(dir)
	if err != nil {
		return nil, fmt.Errorf("walk input directory: %w", err)
	}

	parsePool := worker.NewPool[filewalker.FileEntry, *parser.ParseResult](cfg.WorkerCount,
		func(ctx context.Context, entry filewalker.FileEntry) (*parser.ParseResult, error) {
			return w.ParseFile(entry)
		},
	)
	return parsePool.Execute(ctx, entries), nil
}

func runCheck(ctx context.Context, cfg *config.Config, dir string) error {
	results, err := parseAll(ctx, cfg, dir)
	if err != nil {
		return err
	}

	var failed, diagnostics int
	for _, pr := range results {
		if pr.Err != nil {
			failed++
			log.Error().Err(pr.Err).Str("file", pr.Input.Path).Msg("Parse failed")
			continue
		}
		for _, d := range pr.Result.Diagnostics {
			diagnostics++
			log.Warn().
				Str("file", pr.Input.Path).
				Str("section", d.Section).
				Int("z", d.Z).
				Int("x", d.X).
				Int("y", d.Y).
				Str("cell", d.Text).
				Err(d.Err).
				Msg("Malformed cell")
		}
	}

	log.Info().
		Int("files", len(results)).
		Int("failed", failed).
		Int("diagnostics", diagnostics).
		Msg("Check complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d blueprints failed to parse", failed, len(results))
	}
	return nil
}

func ingestCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <directory>",
		Short: "Parse blueprints, store documents and fingerprints, and build the structure graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(conf(), args[0])
		},
	}
}

func similarCmd(conf func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <file>",
		Short: "List stored blueprints with the closest designation mix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetInt("top")
			return runSimilar(conf(), args[0], top, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Int("top", 5, "Number of matches to list")
	return cmd
}

func sectionsCmd(conf func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List stored sections of one mode from the structure graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("mode")
			mode, ok := model.ParseSectionMode(raw)
			if !ok {
				return fmt.Errorf("unknown mode %q (valid: %s)", raw, strings.Join(model.SectionModeValues(), ", "))
			}
			return runSections(conf(), mode, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("mode", string(model.ModeDig), "Section mode")
	return cmd
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pgPool, nil
}

func connectNeo4j(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}

// initDependencies creates all shared dependencies.
func initDependencies(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, neo4j.DriverWithContext, error) {
	pgPool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		pgPool.Close()
		return nil, nil, err
	}
	return pgPool, driver, nil
}

// runIngest handles the `ingest` command.
func runIngest(cfg *config.Config, inputDir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	pgPool, neo4jDriver, err := initDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()
	defer neo4jDriver.Close(ctx)

	blueprints := store.NewBlueprintStore(pgPool)
	if err := blueprints.EnsureSchema(ctx); err != nil {
		return err
	}
	graphBuilder := graph.NewGraphBuilder(neo4jDriver)
	if err := graphBuilder.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	documents := cache.NewDocumentCache(blueprints)
	if err := documents.Preload(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to preload cache")
	}

	results, err := parseAll(ctx, cfg, inputDir)
	if err != nil {
		return err
	}

	var stored, skipped, failed int
	for _, pr := range results {
		if pr.Err != nil {
			failed++
			log.Error().Err(pr.Err).Str("file", pr.Input.Path).Msg("Parse failed")
			continue
		}
		res := pr.Result
		if documents.Seen(ctx, res.Hash) {
			skipped++
			if err := blueprints.UpdatePath(ctx, res.Hash, res.FilePath); err != nil {
				log.Warn().Err(err).Str("file", res.FilePath).Msg("Failed to refresh stored path")
			}
			log.Debug().Str("file", res.FilePath).Msg("Blueprint unchanged, skipping")
			continue
		}

		rec, err := store.NewRecord(res)
		if err != nil {
			failed++
			log.Error().Err(err).Str("file", res.FilePath).Msg("Serialize failed")
			continue
		}
		if err := blueprints.Upsert(ctx, rec); err != nil {
			failed++
			log.Error().Err(err).Str("file", res.FilePath).Msg("Store failed")
			continue
		}
		if err := graphBuilder.UpsertProject(ctx, res.Hash, res.FilePath, res.Project); err != nil {
			log.Warn().Err(err).Str("file", res.FilePath).Msg("Failed to update graph")
		}
		documents.Mark(res.Hash)
		stored++
	}

	log.Info().
		Int("files", len(results)).
		Int("stored", stored).
		Int("unchanged", skipped).
		Int("failed", failed).
		Msg("Ingestion complete")

	return nil
}

// runSimilar handles the `similar` command.
func runSimilar(cfg *config.Config, path string, top int, out io.Writer) error {
	ctx, cancel := setupContext()
	defer cancel()

	res, err := newImporter(cfg).Parse(path)
	if err != nil {
		return err
	}
	vec := fingerprint.Of(res.Project)

	pgPool, err := connectPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	matches, err := store.NewBlueprintStore(pgPool).Similar(ctx, vec, res.Hash, top)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SIMILARITY\tSECTIONS\tPATH")
	for _, m := range matches {
		fmt.Fprintf(tw, "%.3f\t%d\t%s\n", 1-m.Distance, m.Sections, m.Path)
	}
	return tw.Flush()
}

// runSections handles the `sections` command.
func runSections(cfg *config.Config, mode model.SectionMode, out io.Writer) error {
	ctx, cancel := setupContext()
	defer cancel()

	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	sections, err := graph.NewGraphQuerier(driver).SectionsByMode(ctx, mode)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\t#\tLABEL\tLAYERS")
	for _, s := range sections {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", s.Path, s.Ordinal, s.Label, s.Layers)
	}
	return tw.Flush()
}
