package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/burrow/pkg/compress"
	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/container"
	"github.com/cuemby/burrow/pkg/crypt"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/pool"
	"github.com/cuemby/burrow/pkg/queue"
	"github.com/cuemby/burrow/pkg/router"
	"github.com/cuemby/burrow/pkg/script"
	"github.com/cuemby/burrow/pkg/spool"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/worker"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "Burrow - Priority-aware messaging work engine",
	Long: `Burrow is the concurrency core of a messaging system: a
priority-aware worker pool over a type-partitioned job queue, with
binary message containers and pattern-based topic routing, delivered
as a single binary.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Burrow version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to burrow.yaml (defaults apply when empty)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(spoolCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if jsonOut, _ := cmd.Flags().GetBool("log-json"); jsonOut {
		cfg.Log.JSON = true
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})
	return cfg, nil
}

// buildEngine assembles the pool, its workers and the router from a
// configuration. The returned cleanup stops the pool with the
// configured drain policy and closes the spool.
func buildEngine(cfg *config.Config) (*pool.Pool, *router.Router, func(), error) {
	collab := types.Collaborators{ScratchDir: cfg.Spill.Dir}
	if cfg.Spill.Compress {
		collab.Compressor = compress.New(cfg.Spill.CompressBlockSize)
	}
	if cfg.Spill.EncryptPassword != "" {
		enc, err := crypt.NewFromPassword(cfg.Spill.EncryptPassword)
		if err != nil {
			return nil, nil, nil, err
		}
		collab.Encryptor = enc
	}
	collab.Scripts = script.New(0)

	var store *spool.Store
	var deadLetter pool.DeadLetter
	if cfg.SpoolDir != "" {
		var err error
		store, err = spool.Open(cfg.SpoolDir)
		if err != nil {
			return nil, nil, nil, err
		}
		deadLetter = store
	}

	p := pool.New(pool.Options{
		Queue: queue.Options{
			Strategy:        cfg.Strategy(),
			BoundedCapacity: cfg.BoundedCapacity,
			Logger:          log.WithComponent("queue"),
		},
		Collaborators:  collab,
		SpillEnabled:   cfg.Spill.Enabled,
		SpillThreshold: cfg.Spill.ThresholdBytes,
		Spool:          deadLetter,
		Logger:         log.WithComponent("pool"),
	})

	workerLog := log.WithComponent("worker")
	for _, wc := range cfg.Workers {
		primary, fallbacks, err := wc.Priorities()
		if err != nil {
			return nil, nil, nil, err
		}
		name := wc.Name
		if name == "" {
			name = wc.Primary
		}
		if err := p.Append(worker.New(name, primary, fallbacks, workerLog), false); err != nil {
			return nil, nil, nil, err
		}
	}
	if err := p.Start(); err != nil {
		return nil, nil, nil, err
	}

	r := router.New(p, router.Options{Logger: log.WithComponent("router")})

	cleanup := func() {
		p.Stop(cfg.DrainOnStop())
		if store != nil {
			store.Close()
		}
	}
	return p, r, cleanup, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine with the configured worker set",
	Long: `Start the worker pool, the topic router and the metrics
endpoint, then wait for SIGINT/SIGTERM. With --demo, a heartbeat
producer feeds the router once per second so the pipeline is visible
without an embedder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		p, r, cleanup, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		// Metrics endpoint
		if cfg.MetricsAddr != "" {
			collector := metrics.NewCollector(p.Stats, 15*time.Second)
			collector.Start()
			defer collector.Stop()

			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			go func() {
				if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
					log.Errorf("metrics endpoint failed", err)
				}
			}()
			log.Logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint up")
		}

		demo, _ := cmd.Flags().GetBool("demo")
		stopDemo := make(chan struct{})
		if demo {
			if _, err := r.Subscribe("heartbeat.#", func(c *container.Container) error {
				seq, err := c.Int64("seq")
				if err != nil {
					return err
				}
				note, _ := c.String("note")
				log.Logger.Info().Int64("seq", seq).Str("note", note).Msg("heartbeat delivered")
				return nil
			}); err != nil {
				return err
			}
			go runDemoProducer(p, r, stopDemo)
		}

		log.Logger.Info().
			Int("workers", p.Workers()).
			Str("strategy", string(cfg.Strategy())).
			Msg("burrow serving")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		close(stopDemo)

		log.Info("shutting down")
		return nil
	},
}

// runDemoProducer routes one heartbeat container per second, with the
// note rendered by the Lua script host.
func runDemoProducer(p *pool.Pool, r *router.Router, stop <-chan struct{}) {
	host := p.Collaborators().Scripts
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	seq := int64(0)
	for {
		select {
		case <-ticker.C:
			seq++
			note := "tick"
			if host != nil {
				if out, err := host.Run(fmt.Sprintf(`return "tick " .. %d * %d`, seq, seq)); err == nil {
					note = out
				}
			}
			c := container.NewBuilder().
				Source("demo", "0").
				Target("subscribers", "0").
				Type("heartbeat.demo").
				Add(container.Int64("seq", seq)).
				Add(container.String("note", note)).
				Build()
			if _, err := r.Route(c); err != nil {
				log.Errorf("demo route failed", err)
			}
		case <-stop:
			return
		}
	}
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Build a container from flags and route it through the engine",
	Long: `Assemble a container from command-line flags, run it through
a pool built from the configuration with a printing subscriber on "#",
and exit once it is delivered. Useful as a configuration smoke test.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// Smoke tests always drain so the delivery is observed.
		drain := true
		cfg.WorkerDrainOnStop = &drain

		msgType, _ := cmd.Flags().GetString("type")
		source, _ := cmd.Flags().GetString("source")
		target, _ := cmd.Flags().GetString("target")
		values, _ := cmd.Flags().GetStringArray("value")

		b := container.NewBuilder().
			Source(source, "0").
			Target(target, "0").
			Type(msgType)
		for _, kv := range values {
			name, val, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("bad --value %q, want name=value", kv)
			}
			b.Add(container.String(name, val))
		}
		msg := b.Build()

		_, r, cleanup, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := r.Subscribe("#", func(c *container.Container) error {
			fmt.Printf("delivered: type=%s source=%s target=%s values=%d\n",
				c.MessageType(), c.SourceID(), c.TargetID(), c.Len())
			for _, v := range c.All() {
				fmt.Printf("  %s (%s) = %s\n", v.Name(), v.Kind(), v.ToString())
			}
			return nil
		}); err != nil {
			return err
		}

		report, err := r.Route(msg)
		if err != nil {
			return err
		}
		report.Wait()
		if failures := report.Failures(); len(failures) > 0 {
			return fmt.Errorf("%d deliveries failed", len(failures))
		}
		return nil
	},
}

var spoolCmd = &cobra.Command{
	Use:   "spool",
	Short: "Inspect the dead-letter spool",
}

var spoolListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List archived dead letters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.SpoolDir == "" {
			return fmt.Errorf("spool_dir is not configured")
		}

		store, err := spool.Open(cfg.SpoolDir)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("spool is empty")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-10s  %6d bytes  %s  %s\n",
				e.ArchivedAt.Format(time.RFC3339), e.Priority, len(e.Payload), e.ID, e.Cause)
		}
		return nil
	},
}

var spoolReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-enqueue every dead letter through the configured pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.SpoolDir == "" {
			return fmt.Errorf("spool_dir is not configured")
		}
		// Replays drain so every re-enqueued job executes before exit.
		drain := true
		cfg.WorkerDrainOnStop = &drain

		// Bolt allows a single opener, so the engine is built without
		// a spool attachment and replay opens the database itself.
		spoolDir := cfg.SpoolDir
		cfg.SpoolDir = ""

		p, _, cleanup, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		store, err := spool.Open(spoolDir)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List()
		if err != nil {
			return err
		}
		replayed := 0
		for _, e := range entries {
			if err := store.Reenqueue(e.ID, p); err != nil {
				log.Errorf("replay failed", err)
				continue
			}
			replayed++
		}
		fmt.Printf("replayed %d of %d dead letters\n", replayed, len(entries))
		return nil
	},
}

var spoolPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every archived dead letter",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.SpoolDir == "" {
			return fmt.Errorf("spool_dir is not configured")
		}

		store, err := spool.Open(cfg.SpoolDir)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count()
		if err != nil {
			return err
		}
		if err := store.Purge(); err != nil {
			return err
		}
		fmt.Printf("purged %d dead letters\n", n)
		return nil
	},
}

func init() {
	serveCmd.Flags().Bool("demo", false, "Route a scripted heartbeat once per second")

	routeCmd.Flags().String("type", "smoke.test", "Message type (routing key)")
	routeCmd.Flags().String("source", "cli", "Source identifier")
	routeCmd.Flags().String("target", "engine", "Target identifier")
	routeCmd.Flags().StringArray("value", nil, "String value as name=value (repeatable)")

	spoolCmd.AddCommand(spoolListCmd)
	spoolCmd.AddCommand(spoolPurgeCmd)
	spoolCmd.AddCommand(spoolReplayCmd)
}

