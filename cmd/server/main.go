// campfire-server serves one isolated survival session per SSH connection.
// Build:
//
//	go build -o campfire-server ./cmd/server
//
// Usage:
//
//	./campfire-server [--port 2222] [--key server_host_key] [--config campfire.yaml] [--metrics :9090]
//
// Connect:
//
//	ssh -t -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode"
	"unicode/utf8"

	"campfire/assets"
	"campfire/internal/config"
	"campfire/internal/game"
	xlog "campfire/internal/log"
	"campfire/internal/sshtty"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	xssh "golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// maxNameBytes bounds player names taken from the SSH user.
const maxNameBytes = 16

// defaultTerm is used when the client sends no TERM or one we do not trust.
const defaultTerm = "xterm-256color"

// allowedTerms lists the terminfo entries a client may select.
var allowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"rxvt-unicode-256color": true,
}

const (
	sessionBurst    = 5
	shutdownTimeout = 5 * time.Second
)

// termMu protects os.Setenv("TERM") around screen creation.
var termMu sync.Mutex

func main() {
	port := flag.Int("port", 2222, "SSH server port")
	keyFile := flag.String("key", "server_host_key", "Path to the PEM-encoded host key (auto-generated if absent)")
	configPath := flag.String("config", "", "Path to a settings YAML file")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9090")
	sessionRate := flag.Float64("session-rate", 2, "New sessions allowed per second (burst 5)")
	consoleLogs := flag.Bool("console-logs", false, "Human-readable logs instead of JSON")
	flag.Parse()

	err := run(options{
		port:        *port,
		keyFile:     *keyFile,
		configPath:  *configPath,
		metricsAddr: *metricsAddr,
		sessionRate: *sessionRate,
		consoleLogs: *consoleLogs,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	port        int
	keyFile     string
	configPath  string
	metricsAddr string
	sessionRate float64
	consoleLogs bool
}

func run(opts options) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	xlog.Configure(xlog.Config{Level: settings.LogLevel, Service: "campfire-server", Console: opts.consoleLogs})
	logger := xlog.WithComponent("server")

	tables, err := assets.Load(settings.TablesPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := newTableHub(tables)
	if settings.WatchTables && settings.TablesPath != "" {
		w, err := config.WatchTables(ctx, settings.TablesPath, config.DefaultDebounce)
		if err != nil {
			return err
		}
		defer w.Close() //nolint:errcheck
		go hub.Run(ctx, w.Updates())
	}

	signer, err := loadOrCreateHostKey(opts.keyFile, logger)
	if err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Limit(opts.sessionRate), sessionBurst)
	srv := &gossh.Server{
		Addr: fmt.Sprintf(":%d", opts.port),
		Handler: func(s gossh.Session) {
			if !limiter.Allow() {
				logger.Warn().Str("event", "session.rate_limited").Str("remote", s.RemoteAddr().String()).Msg("too many new sessions")
				fmt.Fprintln(s, "The campfire is crowded. Try again in a moment.")
				return
			}
			handleSession(s, settings, hub)
		},
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// Any client may connect. Add gossh.PublicKeyAuth for real auth.
		HostSigners: []gossh.Signer{signer},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("event", "server.listening").Int("port", opts.port).Msg("campfire SSH server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	})

	var metricsSrv *http.Server
	if opts.metricsAddr != "" {
		metricsSrv = newMetricsServer(opts.metricsAddr)
		g.Go(func() error {
			logger.Info().Str("event", "metrics.listening").Str("addr", opts.metricsAddr).Msg("serving metrics")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info().Str("event", "server.stopped").Msg("server stopped")
	return err
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

// handleSession runs one game for one connection. It blocks until the
// player quits or the connection drops.
func handleSession(s gossh.Session, settings config.Settings, hub *tableHub) {
	id := uuid.NewString()
	name := sanitizeName(s.User())
	logger := xlog.ForSession("server", id, map[string]string{"remote": s.RemoteAddr().String()})

	pty, winCh, hasPTY := s.Pty()
	if !hasPTY {
		fmt.Fprintln(s, "Campfire needs a PTY. Connect with: ssh -t -p <port> <host>")
		return
	}

	term := termFromEnv(s.Environ())
	tty := sshtty.FromSession(s, pty, winCh)
	termMu.Lock()
	_ = os.Setenv("TERM", term)
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	termMu.Unlock()
	if err != nil {
		logger.Warn().Err(err).Str("event", "session.terminal_failed").Str("term", term).Msg("terminal setup failed")
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}
	if err := screen.Init(); err != nil {
		logger.Warn().Err(err).Str("event", "session.screen_failed").Msg("screen init failed")
		fmt.Fprintf(s, "Screen init failed: %v\n", err)
		return
	}
	defer screen.Fini()

	updates, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	opts := []game.Option{game.WithSessionID(id), game.WithTableUpdates(updates)}
	if name != "" {
		opts = append(opts, game.WithPlayerName(name))
	}
	g, err := game.New(settings, hub.Current(), opts...)
	if err != nil {
		logger.Error().Err(err).Str("event", "session.create_failed").Msg("could not create game")
		return
	}

	logger.Info().Str("event", "session.opened").Str("player", name).Str("term", term).Msg("session opened")
	if err := g.Run(s.Context(), screen); err != nil {
		logger.Error().Err(err).Str("event", "session.failed").Msg("session ended with error")
		return
	}
	logger.Info().Str("event", "session.closed").Msg("session closed")
}

// termFromEnv returns the client's TERM if it is allowed, else defaultTerm.
func termFromEnv(environ []string) string {
	for _, env := range environ {
		if term, ok := strings.CutPrefix(env, "TERM="); ok {
			if allowedTerms[term] {
				return term
			}
			break
		}
	}
	return defaultTerm
}

// sanitizeName strips control characters and truncates to maxNameBytes
// without splitting a rune.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) || r == utf8.RuneError {
			continue
		}
		if b.Len()+utf8.RuneLen(r) > maxNameBytes {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string, logger zerolog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			logger.Info().Str("event", "hostkey.loaded").Str("path", path).Msg("loaded host key")
			return signer, nil
		}
	}

	logger.Info().Str("event", "hostkey.generated").Str("path", path).Msg("generating new ed25519 host key")
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	pemBlock, err := xssh.MarshalPrivateKey(key, "campfire server")
	if err == nil {
		err = renameio.WriteFile(path, pem.EncodeToMemory(pemBlock), 0o600)
	}
	if err != nil {
		logger.Warn().Err(err).Str("event", "hostkey.persist_failed").Msg("host key not saved; clients will see a new key next run")
	}
	return signer, nil
}
