package queryd

import (
	"context"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/abligh/go-daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teamspeak-go/ts3query/query"
)

// reconnectDelay spaces out connection attempts when the server is away
const reconnectDelay = 5 * time.Second

// Control mediates the running of the main process
type Control struct {
	quit chan struct{}
	wg   sync.WaitGroup
}

// startMetrics serves the collector over HTTP when configured
func startMetrics(logger *log.Logger, collector *query.Collector, c MetricsConfig) {
	if c.Address == "" {
		return
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	logger.Printf("[INFO] Serving metrics on %s", c.Address)
	go func() {
		if err := http.ListenAndServe(c.Address, mux); err != nil {
			logger.Printf("[ERROR] Metrics server failed: %v", err)
		}
	}()
}

// monitorLoop keeps one monitoring session alive until the context ends,
// reconnecting with a delay when the connection drops
func monitorLoop(ctx context.Context, logger *log.Logger, collector *query.Collector, c *Config) {
	for {
		if err := runMonitor(ctx, logger, collector, c); err != nil {
			logger.Printf("[ERROR] Monitor session ended: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

// RunConfig - this is effectively the main entry point of the program
//
// We parse the config, start the monitor, and restart it when we get
// SIGHUP so that configuration changes take effect
func RunConfig(control *Control) {
	// just until we read the configuration
	logger := log.New(os.Stderr, "ts3queryd:", log.LstdFlags)
	var logCloser io.Closer
	collector := query.NewCollector("ts3query", []string{"server"}, nil)
	metricsStarted := false
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer func() {
		logger.Println("[INFO] Shutting down")
		cancelFunc()
		logger.Println("[INFO] Shutdown complete")
		if logCloser != nil {
			logCloser.Close()
		}
		control.wg.Done()
	}()

	intr := make(chan os.Signal, 1)
	term := make(chan os.Signal, 1)
	hup := make(chan os.Signal, 1)
	defer close(intr)
	defer close(term)
	defer close(hup)
	if !*foreground {
		signal.Notify(intr, os.Interrupt)
		signal.Notify(term, syscall.SIGTERM)
		signal.Notify(hup, syscall.SIGHUP)
	}

	for {
		var wg sync.WaitGroup
		configCtx, configCancelFunc := context.WithCancel(ctx)
		c, err := ParseConfig()
		if err != nil {
			logger.Printf("[ERROR] Cannot parse configuration file: %v", err)
			configCancelFunc()
			return
		}
		if nlogger, nlogCloser, err := c.GetLogger(); err != nil {
			logger.Printf("[ERROR] Could not load logger: %v", err)
		} else {
			if logCloser != nil {
				logCloser.Close()
			}
			logger = nlogger
			logCloser = nlogCloser
		}
		logger.Printf("[INFO] Loaded configuration.")

		if !metricsStarted {
			startMetrics(logger, collector, c.Metrics)
			metricsStarted = true
		}

		wg.Add(1)
		go func() {
			monitorLoop(configCtx, logger, collector, c)
			wg.Done()
		}()

		select {
		case <-ctx.Done():
			logger.Println("[INFO] Interrupted")
			configCancelFunc()
			wg.Wait()
			return
		case <-intr:
			logger.Println("[INFO] Interrupt signal received")
			configCancelFunc()
			wg.Wait()
			return
		case <-term:
			logger.Println("[INFO] Terminate signal received")
			configCancelFunc()
			wg.Wait()
			return
		case <-control.quit:
			logger.Println("[INFO] Programmatic quit received")
			configCancelFunc()
			wg.Wait()
			return
		case <-hup:
			logger.Println("[INFO] Reload signal received; reconnecting with the new configuration")
			configCancelFunc() // kill the session so it restarts with the new config
			wg.Wait()
		}
	}
}

// Run daemonizes unless running in the foreground, handles the stop and
// reload signal flags, then hands over to RunConfig
func Run(control *Control) {
	if control == nil {
		control = &Control{}
		// normally adding to a waitgroup inside the go-routine that
		// exits is racy, but nil is only ever passed in if we don't
		// care what happens on quit
		control.wg.Add(1)
	}

	if *pprof {
		runtime.MemProfileRate = 1
		go http.ListenAndServe(":8080", nil)
	}

	// Just for this routine
	logger := log.New(os.Stderr, "ts3queryd:", log.LstdFlags)

	daemon.AddFlag(daemon.StringFlag(sendSignal, "stop"), syscall.SIGTERM)
	daemon.AddFlag(daemon.StringFlag(sendSignal, "reload"), syscall.SIGHUP)

	if daemon.WasReborn() {
		if val := os.Getenv(ENV_CONFFILE); val != "" {
			*configFile = val
		}
		if val := os.Getenv(ENV_PIDFILE); val != "" {
			*pidFile = val
		}
	}

	var err error
	if *configFile, err = filepath.Abs(*configFile); err != nil {
		logger.Fatalf("[CRIT] Error canonicalising config file path: %v", err)
	}
	if *pidFile, err = filepath.Abs(*pidFile); err != nil {
		logger.Fatalf("[CRIT] Error canonicalising pid file path: %v", err)
	}

	// check the configuration parses. We do nothing with this at this stage
	// but it eliminates a problem where the log of the configuration failing
	// is invisible when daemonizing naively (e.g. when no alternate log
	// destination is supplied) and the config file cannot be read
	if _, err := ParseConfig(); err != nil {
		logger.Fatalf("[CRIT] Cannot parse configuration file: %v", err)
	}

	if *foreground {
		RunConfig(control)
		return
	}

	os.Setenv(ENV_CONFFILE, *configFile)
	os.Setenv(ENV_PIDFILE, *pidFile)

	// Define daemon context
	d := &daemon.Context{
		PidFileName: *pidFile,
		PidFilePerm: 0644,
		Umask:       027,
	}

	// Send commands if needed
	if len(daemon.ActiveFlags()) > 0 {
		p, err := d.Search()
		if err != nil {
			logger.Fatalf("[CRIT] Unable send signal to the daemon - not running")
		}
		if err := p.Signal(syscall.Signal(0)); err != nil {
			logger.Fatalf("[CRIT] Unable send signal to the daemon - not running, perhaps PID file is stale")
		}
		daemon.SendCommands(p)
		return
	}

	if !daemon.WasReborn() {
		if p, err := d.Search(); err == nil {
			if err := p.Signal(syscall.Signal(0)); err == nil {
				logger.Fatalf("[CRIT] Daemon is already running (pid %d)", p.Pid)
			} else {
				logger.Printf("[INFO] Removing stale PID file %s", *pidFile)
				os.Remove(*pidFile)
			}
		}
	}

	// Process daemon operations - send signal if present flag or daemonize
	child, err := d.Reborn()
	if err != nil {
		logger.Fatalf("[CRIT] Daemonize: %v", err)
	}
	if child != nil {
		return
	}

	defer func() {
		d.Release()
	}()

	RunConfig(control)
}
