package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"clipsaver/internal/api"
	"clipsaver/internal/clipsource"
	"clipsaver/internal/config"
	clerrors "clipsaver/internal/errors"
	"clipsaver/internal/logger"
	"clipsaver/internal/metrics"
	"clipsaver/internal/notify"
	"clipsaver/internal/watcher"
)

const (
	// ShutdownTimeout bounds how long shutdown waits for the watcher to
	// reach Idle before giving up on it.
	ShutdownTimeout = 5 * time.Second
	startTimeout    = 5 * time.Second
)

type SourceFactory func(backend clipsource.Backend) (watcher.Source, error)

type Option func(*Daemon)

// WithSourceFactory replaces clipsource.New, mainly for tests.
func WithSourceFactory(f SourceFactory) Option {
	return func(d *Daemon) {
		d.newSource = f
	}
}

// WithConfigPath watches path instead of config.ConfigPath().
func WithConfigPath(path string) Option {
	return func(d *Daemon) {
		d.configPath = path
	}
}

// Daemon manages the clipsaverd lifecycle
type Daemon struct {
	configMu   sync.RWMutex
	config     *config.Config
	configPath string

	logger    *logger.Logger
	newSource SourceFactory
	metrics   *metrics.Metrics
	tracker   *notify.Tracker
	queue     *notify.Queue

	watcherMu sync.Mutex
	watcher   *watcher.Watcher

	server   *http.Server
	addrMu   sync.Mutex
	addr     net.Addr
	cancel   context.CancelFunc
	stopOnce sync.Once
	ready    chan struct{}
}

// New creates a new Daemon instance
func New(cfg *config.Config, log *logger.Logger, opts ...Option) *Daemon {
	if log == nil {
		log = logger.Default()
	}
	d := &Daemon{
		config:    cfg,
		logger:    log,
		newSource: clipsource.New,
		metrics:   metrics.New(),
		tracker:   notify.NewTracker(),
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start runs the daemon until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	return d.Run(context.Background())
}

// Run starts monitoring, serves the control API and blocks until ctx is
// done, a signal arrives or the server fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.writePIDFile(); err != nil {
		return clerrors.WrapDaemon("write PID file", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	d.queue = notify.NewQueue(notify.Multi{
		notify.NewLogObserver(d.logger.Logger),
		d.metrics,
		d.tracker,
	}, d.logger.Logger)

	cfg := d.Config()
	if err := cfg.EnsureDestinationDir(); err != nil {
		d.Shutdown()
		return clerrors.WrapDaemon("prepare destination", err)
	}

	w, err := d.buildWatcher(cfg)
	if err != nil {
		d.Shutdown()
		return clerrors.WrapDaemon("create watcher", err)
	}
	d.setWatcher(w)

	startCtx, startCancel := context.WithTimeout(ctx, startTimeout)
	err = w.Start(startCtx)
	startCancel()
	if err != nil {
		d.Shutdown()
		return clerrors.WrapDaemon("start watcher", err)
	}

	if err := d.startConfigWatcher(ctx); err != nil {
		d.logger.Warn("config hot reload disabled", slog.String("error", err.Error()))
	}

	errChan := make(chan error, 1)
	if cfg.HTTP.Enabled {
		if err := d.startServer(cfg.HTTP.Port, errChan); err != nil {
			d.Shutdown()
			return clerrors.WrapDaemon("start control API", err)
		}
	}

	d.logger.Info("clipsaverd started",
		slog.String("destination", cfg.Destination),
		slog.Duration("interval", cfg.PollInterval),
		slog.String("backend", string(clipsource.Name(w.Source()))))
	close(d.ready)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		d.logger.Info("shutting down gracefully", slog.String("signal", sig.String()))
		return d.Shutdown()
	case <-ctx.Done():
		return d.Shutdown()
	case err := <-errChan:
		d.Shutdown()
		return clerrors.WrapDaemon("serve control API", err)
	}
}

func (d *Daemon) startServer(port int, errChan chan<- error) error {
	apiServer := api.NewServer(controller{d}, d.tracker, d.Destination, d.metrics, d.logger)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return err
	}

	d.server = &http.Server{
		Handler:           apiServer.SetupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	d.addrMu.Lock()
	d.addr = listener.Addr()
	d.addrMu.Unlock()

	go func() {
		d.logger.Info("control API listening", slog.String("addr", listener.Addr().String()))
		if err := d.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	return nil
}

// Ready is closed once the watcher and control API are up.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

// Addr is the control API address, or nil when the API is disabled.
func (d *Daemon) Addr() net.Addr {
	d.addrMu.Lock()
	defer d.addrMu.Unlock()
	return d.addr
}

func (d *Daemon) Config() *config.Config {
	d.configMu.RLock()
	defer d.configMu.RUnlock()
	return d.config
}

// Destination reads the configured journal path. The watcher calls it on
// every save so edits to the config apply without a restart.
func (d *Daemon) Destination() string {
	return d.Config().Destination
}

// Shutdown gracefully shuts down the daemon. It is safe to call more than once.
func (d *Daemon) Shutdown() error {
	var shutdownErr error
	d.stopOnce.Do(func() {
		shutdownErr = d.shutdown()
	})
	return shutdownErr
}

func (d *Daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if d.cancel != nil {
		d.cancel()
	}

	var errs []error

	if w := d.currentWatcher(); w != nil {
		if err := w.StopAndWait(ctx); err != nil {
			d.logger.Error("watcher did not stop in time, exiting anyway",
				slog.Duration("timeout", ShutdownTimeout))
			errs = append(errs, fmt.Errorf("stop watcher: %w", err))
		}
	}

	if d.server != nil {
		if err := d.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
		}
	}

	if d.queue != nil {
		d.queue.Close()
	}

	d.removePIDFile()
	d.logger.Info("daemon stopped")
	return errors.Join(errs...)
}

// PIDFile returns the path to the PID file
func PIDFile() (string, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "clipsaverd.pid"), nil
}

// writePIDFile writes the current process ID to the PID file
func (d *Daemon) writePIDFile() error {
	pidPath, err := PIDFile()
	if err != nil {
		return err
	}

	if IsRunning() {
		return fmt.Errorf("daemon is already running (PID file exists at %s)", pidPath)
	}

	if err := os.MkdirAll(filepath.Dir(pidPath), 0755); err != nil {
		return err
	}

	pid := os.Getpid()
	return os.WriteFile(pidPath, []byte(strconv.Itoa(pid)), 0644)
}

// removePIDFile removes the PID file if it still names this process
func (d *Daemon) removePIDFile() {
	pidPath, err := PIDFile()
	if err != nil {
		return
	}
	if GetPID() == os.Getpid() {
		os.Remove(pidPath)
	}
}

// IsRunning checks if the daemon is running
func IsRunning() bool {
	pid := GetPID()
	if pid == 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// On Unix, FindProcess always succeeds, so we need to send signal 0
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// GetPID returns the PID recorded in the PID file, or 0 if there is none
func GetPID() int {
	pidPath, err := PIDFile()
	if err != nil {
		return 0
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		return 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}

	return pid
}

// StopDaemon stops a running daemon
func StopDaemon() error {
	if !IsRunning() {
		return fmt.Errorf("daemon is not running")
	}

	pid := GetPID()
	if pid == 0 {
		return fmt.Errorf("could not read PID file")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("send SIGTERM: %w", err)
	}

	// Shutdown may take up to ShutdownTimeout for the watcher plus the server.
	deadline := time.Now().Add(2*ShutdownTimeout + time.Second)
	for time.Now().Before(deadline) {
		if !IsRunning() {
			pidPath, _ := PIDFile()
			os.Remove(pidPath)
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("daemon did not stop after %s", 2*ShutdownTimeout+time.Second)
}
