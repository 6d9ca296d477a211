package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ledgermesh/ledgermesh/app/services/node/handlers"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/genesis"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/gossip"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/peer"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/state"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/storage"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/storage/disk"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/storage/memory"
	"github.com/ledgermesh/ledgermesh/foundation/blockchain/worker"
	"github.com/ledgermesh/ledgermesh/foundation/events"
	"github.com/ledgermesh/ledgermesh/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		Gossip struct {
			Host              string        `conf:"default:0.0.0.0:9080"`
			KnownPeers        []string      `conf:"default:"`
			ReconcileInterval time.Duration `conf:"default:10s"`
		}
		State struct {
			Beneficiary string `conf:"default:miner1"`
			GenesisPath string `conf:"default:"`
			ArchivePath string `conf:"default:"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(` _     _____ ____   ____ _____ ____  __  __ _____ ____  _   _ `)
	fmt.Println(`| |   | ____|  _ \ / ___| ____|  _ \|  \/  | ____/ ___|| | | |`)
	fmt.Println(`| |   |  _| | | | | |  _|  _| | |_) | |\/| |  _| \___ \| |_| |`)
	fmt.Println(`| |___| |___| |_| | |_| | |___|  _ <| |  | | |___ ___) |  _  |`)
	fmt.Println(`|_____|_____|____/ \____|_____|_| \_\_|  |_|_____|____/|_| |_|`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Blockchain Support

	// Every node on the network must agree on the genesis parameters or it
	// will reject everyone else's chain. Without a file the built in defaults
	// are used.
	gen := genesis.Default()
	if cfg.State.GenesisPath != "" {
		gen, err = genesis.Load(cfg.State.GenesisPath)
		if err != nil {
			return fmt.Errorf("unable to load genesis file: %w", err)
		}
	}

	// Without an archive path the chain lives in memory only and is rebuilt
	// from the network on restart.
	var archive storage.Archive
	switch cfg.State.ArchivePath {
	case "":
		archive = memory.New()
	default:
		archive, err = disk.New(cfg.State.ArchivePath)
		if err != nil {
			return fmt.Errorf("unable to open block archive: %w", err)
		}
	}

	// A peer set is a collection of known nodes in the network so transactions
	// and blocks can be shared.
	peerSet := peer.NewSet()
	for _, host := range cfg.Gossip.KnownPeers {
		peerSet.Add(peer.New(host))
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The gossip network carries blocks, transactions and chain exchanges
	// between the peers over websockets.
	network := gossip.New(cfg.Gossip.Host, ev)
	if err := network.Listen(); err != nil {
		return fmt.Errorf("unable to start gossip listener: %w", err)
	}
	defer network.Shutdown()

	// The state value represents the blockchain node. It owns the chain, the
	// mempool and the block archive and provides an API for application support.
	st, err := state.New(state.Config{
		Beneficiary: cfg.State.Beneficiary,
		Genesis:     gen,
		Archive:     archive,
		Channel:     network,
		KnownPeers:  peerSet,
		EvHandler:   ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements the different workflows such as mining,
	// transaction sharing, gossip processing and peer reconciliation. The
	// worker will register itself with the state.
	worker.Run(st, network.Events(), cfg.Gossip.ReconcileInterval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
