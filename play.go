package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robalobadob/redactle/apps/go-server/internal/client"
	"github.com/robalobadob/redactle/apps/go-server/internal/render"
	"github.com/robalobadob/redactle/apps/go-server/internal/settings"
	"github.com/robalobadob/redactle/apps/go-server/internal/store"
	"github.com/robalobadob/redactle/apps/go-server/internal/tracker"
)

const clearScreen = "\033[H\033[2J"

func newPlayCmd(cfg *Config, v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal against a server or the local corpus.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validatePlay(); err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg, cmd.Flags().Changed("timer"), os.Stdin, os.Stdout)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.server, "server", "", "server URL, e.g. http://localhost:3001; empty plays in-process (env: REDACTLE_SERVER)")
	fs.StringVar(&cfg.settingsPath, "config", "", "settings file (default <UserConfigDir>/redactle/redactle-config.json) (env: REDACTLE_CONFIG)")
	fs.IntVar(&cfg.timer, "timer", 0, "round length in seconds; saved to the settings file (env: REDACTLE_TIMER)")
	fs.StringVar(&cfg.data, "data", "", "directory of CSV sources for in-process play (env: REDACTLE_DATA)")
	fs.StringVar(&cfg.db, "db", "", "SQLite corpus for in-process play (env: REDACTLE_DB)")
	bindFlags(v, fs)

	return cmd
}

// loadSettings reads the settings file and applies --timer, saving it back.
func loadSettings(cfg *Config, timerSet bool) (settings.Settings, error) {
	path := cfg.settingsPath
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return settings.Defaults(), err
		}
		path = p
	}
	s, err := settings.Load(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("using default settings")
	}
	if timerSet && cfg.timer > 0 && cfg.timer != s.TimerDuration {
		s.TimerDuration = cfg.timer
		if err := settings.Save(path, s); err != nil {
			return s, fmt.Errorf("save settings: %w", err)
		}
		log.Info().Str("path", path).Int("timer", s.TimerDuration).Msg("settings saved")
	}
	return s, nil
}

func (c *Config) backend() (tracker.Backend, func() error, error) {
	if c.server != "" {
		cl, err := client.New(c.server, nil)
		if err != nil {
			return nil, nil, err
		}
		return cl, noClose, nil
	}
	loader, closeFn, err := c.loader()
	if err != nil {
		return nil, nil, err
	}
	return tracker.Local{Corpus: store.NewLazy(loader)}, closeFn, nil
}

// frames keeps only the most recent snapshot for the draw loop.
type frames struct {
	mu    sync.Mutex
	last  tracker.Snapshot
	ready chan struct{}
}

func newFrames() *frames { return &frames{ready: make(chan struct{}, 1)} }

func (f *frames) put(s tracker.Snapshot) {
	f.mu.Lock()
	f.last = s
	f.mu.Unlock()
	select {
	case f.ready <- struct{}{}:
	default:
	}
}

func (f *frames) get() tracker.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func runPlay(ctx context.Context, cfg *Config, timerSet bool, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := loadSettings(cfg, timerSet)
	if err != nil {
		return err
	}
	backend, closeFn, err := cfg.backend()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	fr := newFrames()
	tr := tracker.New(backend, s.TimerDuration, tracker.WithListener(fr.put))
	tr.StartTimer(ctx)
	defer tr.Stop()

	r := render.New(lipgloss.NewRenderer(out))
	draw := func() {
		fmt.Fprint(out, clearScreen)
		fmt.Fprint(out, r.Screen(fr.get()))
		fmt.Fprint(out, "guess (:new, :quit) > ")
	}

	if err := tr.NewGame(ctx); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case <-fr.ready:
			draw()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := handleInput(ctx, tr, line)
			if quit {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

// handleInput applies one line of player input. Only errors that end the
// session are returned; everything else is shown through the tracker notice.
func handleInput(ctx context.Context, tr *tracker.Tracker, line string) (quit bool, err error) {
	switch strings.TrimSpace(line) {
	case ":quit", ":q":
		return true, nil
	case ":new", ":n":
		if err := tr.NewGame(ctx); err != nil && !errors.Is(err, tracker.ErrStale) {
			log.Debug().Err(err).Msg("new game")
		}
		return false, nil
	case "":
		return false, nil
	}

	_, err = tr.Submit(ctx, line)
	switch {
	case err == nil,
		errors.Is(err, tracker.ErrAlreadyGuessed),
		errors.Is(err, tracker.ErrStale),
		errors.Is(err, tracker.ErrEmptyGuess):
	case errors.Is(err, tracker.ErrGameOver), errors.Is(err, tracker.ErrNoQuiz):
		tr.DismissNotice()
	default:
		log.Debug().Err(err).Msg("guess failed")
	}
	return false, nil
}
