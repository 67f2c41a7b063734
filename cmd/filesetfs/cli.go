package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/marmos91/filesetfs/internal/logger"
	"github.com/marmos91/filesetfs/pkg/backend"
	_ "github.com/marmos91/filesetfs/pkg/backend/badger"
	_ "github.com/marmos91/filesetfs/pkg/backend/memory"
	_ "github.com/marmos91/filesetfs/pkg/backend/s3"
	"github.com/marmos91/filesetfs/pkg/catalog"
	"github.com/marmos91/filesetfs/pkg/config"
	"github.com/marmos91/filesetfs/pkg/filesystem"
	"github.com/marmos91/filesetfs/pkg/metrics"
)

const usage = `filesetfs - browse catalog filesets on object storage

Usage:
  filesetfs [flags] <command> [arguments]

Commands:
  init [-force]          Write a default configuration file
  schemes                List supported storage location schemes
  stat <path>            Show file or directory attributes
  ls [path]              List a directory (default /)
  cat <path>             Print a file
  put <path> [file|-]    Upload a local file, or stdin
  mkdir <path>           Create a directory
  rm <path>              Remove a file
  rmdir <path>           Remove an empty directory
  serve-metrics          Serve Prometheus metrics until interrupted

Flags:
`

// readChunk is the size of each read issued by cat.
const readChunk = 1 << 20

// globalOptions are the flags accepted before the command name.
type globalOptions struct {
	configPath string
	logLevel   string
	catalog    string
	fileset    string
}

type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	env := &environment{stdin: stdin, stdout: stdout, stderr: stderr}

	var opts globalOptions
	flags := flag.NewFlagSet("filesetfs", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/filesetfs/config.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level (DEBUG, INFO, WARN, ERROR)")
	flags.StringVar(&opts.catalog, "catalog", "", "Catalog name (default: the only configured catalog)")
	flags.StringVar(&opts.fileset, "fileset", "", "Fileset name (default: the only fileset of the catalog)")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("no command given")
	}

	command, rest := flags.Arg(0), flags.Args()[1:]

	switch command {
	case "init":
		return runInit(env, opts, rest)
	case "schemes":
		fmt.Fprintln(stdout, strings.Join(backend.Schemes(), "\n"))
		return nil
	case "serve-metrics":
		return runServeMetrics(ctx, opts, rest)
	case "stat", "ls", "cat", "put", "mkdir", "rm", "rmdir":
		return runFilesetCommand(ctx, env, opts, command, rest)
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runInit(env *environment, opts globalOptions, args []string) error {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	flags.SetOutput(env.stderr)
	force := flags.Bool("force", false, "Overwrite an existing config file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	path := opts.configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	written, err := config.InitConfigAt(path, *force)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Configuration written to %s\n", written)
	return nil
}

// loadConfig loads the configuration and applies it to the logger and the
// metrics registry.
func loadConfig(opts globalOptions) (*config.AppConfig, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = strings.ToUpper(opts.logLevel)
	}
	if err := logger.Configure(level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	return cfg, nil
}

func runServeMetrics(ctx context.Context, opts globalOptions, args []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	flags := flag.NewFlagSet("serve-metrics", flag.ContinueOnError)
	port := flags.Int("port", cfg.Metrics.Port, "Port to listen on")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if !cfg.Metrics.Enabled {
		logger.Warn("Metrics are disabled in the configuration; /metrics will answer 503")
	}

	server := metrics.NewServer(metrics.ServerConfig{Port: *port, ShutdownTimeout: 5 * time.Second})
	return server.Start(ctx)
}

// selectFileset picks the catalog and fileset to operate on. Explicit names
// win; otherwise the configuration must hold exactly one candidate.
func selectFileset(cfg *config.AppConfig, opts globalOptions) (string, string, error) {
	catalogName := opts.catalog
	if catalogName == "" {
		if len(cfg.Catalogs) != 1 {
			return "", "", fmt.Errorf("-catalog is required when %d catalogs are configured", len(cfg.Catalogs))
		}
		catalogName = cfg.Catalogs[0].Name
	}

	filesetName := opts.fileset
	if filesetName == "" {
		for _, c := range cfg.Catalogs {
			if c.Name != catalogName {
				continue
			}
			if len(c.Filesets) != 1 {
				return "", "", fmt.Errorf("-fileset is required when catalog %s has %d filesets", catalogName, len(c.Filesets))
			}
			filesetName = c.Filesets[0].Name
		}
	}
	if filesetName == "" {
		return "", "", fmt.Errorf("catalog %s is not configured", catalogName)
	}
	return catalogName, filesetName, nil
}

func runFilesetCommand(ctx context.Context, env *environment, opts globalOptions, command string, args []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	catalogName, filesetName, err := selectFileset(cfg, opts)
	if err != nil {
		return err
	}

	fsCtx := filesystem.NewFileSystemContext(uint32(os.Getuid()), uint32(os.Getgid()), cfg)
	fs, err := backend.Load(ctx, catalog.NewStaticClient(cfg.Catalogs), catalogName, filesetName, cfg, fsCtx)
	if err != nil {
		return err
	}
	if c, ok := fs.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logger.Warn("Failed to close fileset %s/%s: %v", catalogName, filesetName, err)
			}
		}()
	}

	if err := fs.Init(ctx); err != nil {
		return err
	}

	path := "/"
	if len(args) > 0 {
		path = args[0]
	} else if command != "ls" {
		return fmt.Errorf("%s: path argument is required", command)
	}

	switch command {
	case "stat":
		stat, err := fs.Stat(ctx, path)
		if err != nil {
			return err
		}
		printStat(env.stdout, stat)
		return nil
	case "ls":
		return listDir(ctx, env.stdout, fs, path)
	case "cat":
		return catFile(ctx, env.stdout, fs, path)
	case "put":
		source := "-"
		if len(args) > 1 {
			source = args[1]
		}
		return putFile(ctx, env, fs, path, source)
	case "mkdir":
		_, err := fs.CreateDir(ctx, path)
		return err
	case "rm":
		return fs.RemoveFile(ctx, path)
	case "rmdir":
		return fs.RemoveDir(ctx, path)
	}
	return nil
}
