package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/robalobadob/redactle/apps/go-server/assets"
	"github.com/robalobadob/redactle/apps/go-server/internal/httpserver"
	"github.com/robalobadob/redactle/apps/go-server/internal/rows"
	"github.com/robalobadob/redactle/apps/go-server/internal/store"
)

type Config struct {
	bind           string
	clientOrigin   string
	dailySalt      string
	data           string
	db             string
	logLevel       string
	port           int
	prettyLog      bool
	requestTimeout time.Duration

	// play
	server       string
	settingsPath string
	timer        int
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.requestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout: %s", c.requestTimeout)
	}
	if c.data != "" && c.db != "" {
		return errors.New("--data and --db are mutually exclusive; use the import command to load CSV data into a database")
	}
	return nil
}

func (c *Config) validatePlay() error {
	if c.server != "" {
		u, err := url.Parse(c.server)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid server url: %q", c.server)
		}
	}
	if c.timer < 0 {
		return fmt.Errorf("invalid timer (must be positive): %d", c.timer)
	}
	if c.data != "" && c.db != "" {
		return errors.New("--data and --db are mutually exclusive")
	}
	return nil
}

func (c *Config) addr() string {
	return net.JoinHostPort(c.bind, strconv.Itoa(c.port))
}

// setupLogging applies --log-level and --pretty-log to the global logger.
func (c *Config) setupLogging() error {
	lvl, err := zerolog.ParseLevel(c.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.logLevel, err)
	}
	zerolog.SetGlobalLevel(lvl)
	if c.prettyLog {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}

// loader picks the row source: SQLite when --db is set, a CSV directory when
// --data is set, the embedded sample otherwise. The returned func releases it.
func (c *Config) loader() (rows.Loader, func() error, error) {
	switch {
	case c.db != "":
		db, err := rows.OpenDB(c.db)
		if err != nil {
			return nil, nil, err
		}
		return rows.SQLiteLoader{DB: db, Name: c.db}, db.Close, nil
	case c.data != "":
		return rows.DirLoader{FS: os.DirFS(c.data), Name: c.data}, noClose, nil
	default:
		return rows.DirLoader{FS: assets.Sample(), Name: "embedded sample"}, noClose, nil
	}
}

func noClose() error { return nil }

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("REDACTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	serve := func(cmd *cobra.Command, args []string) error {
		if err := cfg.validate(); err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	}

	cmd := &cobra.Command{
		Use:     "redactle",
		Short:   "Guess the redacted words before the clock runs out.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.setupLogging()
		},
		RunE: serve,
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&cfg.logLevel, "log-level", getEnv("LOG_LEVEL", "info"), "zerolog level (env: LOG_LEVEL, REDACTLE_LOG_LEVEL)")
	pfs.BoolVar(&cfg.prettyLog, "pretty-log", false, "human-readable console logs (env: REDACTLE_PRETTY_LOG)")
	bindFlags(v, pfs)

	serveFlags := func(fs *pflag.FlagSet) {
		defPort, err := strconv.Atoi(getEnv("PORT", "3001"))
		if err != nil {
			defPort = 3001
		}
		fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: REDACTLE_BIND)")
		fs.IntVarP(&cfg.port, "port", "p", defPort, "port to listen on (env: PORT, REDACTLE_PORT)")
		fs.StringVar(&cfg.data, "data", "", "directory of CSV sources; empty uses the embedded sample (env: REDACTLE_DATA)")
		fs.StringVar(&cfg.db, "db", "", "SQLite corpus written by the import command (env: REDACTLE_DB)")
		fs.StringVar(&cfg.clientOrigin, "client-origin", "http://localhost:5173", "allowed CORS origin (env: REDACTLE_CLIENT_ORIGIN)")
		fs.StringVar(&cfg.dailySalt, "daily-salt", "local_dev_salt", "key for the quiz of the day (env: REDACTLE_DAILY_SALT)")
		fs.DurationVar(&cfg.requestTimeout, "request-timeout", 10*time.Second, "per-request handler timeout (env: REDACTLE_REQUEST_TIMEOUT)")
	}
	serveFlags(cmd.Flags())
	bindFlags(v, cmd.Flags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quiz JSON API (default).",
		Args:  cobra.ExactArgs(0),
		RunE:  serve,
	}
	serveFlags(serveCmd.Flags())
	bindFlags(v, serveCmd.Flags())

	cmd.AddCommand(serveCmd, newPlayCmd(cfg, v), newImportCmd(cfg, v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("redactle v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// bindFlags lets REDACTLE_* environment variables fill any flag not given on
// the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func runServe(ctx context.Context, cfg *Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, closeFn, err := cfg.loader()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("close corpus source")
		}
	}()

	srv := httpserver.New(store.NewLazy(loader), httpserver.Config{
		ClientOrigin:   cfg.clientOrigin,
		DailySalt:      cfg.dailySalt,
		RequestTimeout: cfg.requestTimeout,
	})
	log.Info().Str("addr", cfg.addr()).Str("source", sourceName(cfg)).Msg("starting redactle server")
	return srv.Run(ctx, cfg.addr())
}

func sourceName(cfg *Config) string {
	switch {
	case cfg.db != "":
		return "sqlite:" + cfg.db
	case cfg.data != "":
		return cfg.data
	default:
		return "embedded sample"
	}
}
