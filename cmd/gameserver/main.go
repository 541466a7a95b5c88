// Command gameserver is this module's entrypoint: it loads configuration,
// wires the rule engine, session coordinator, and transport layer together,
// and optionally joins the cross-node discovery/messaging/persistence
// surface. Grounded on the teacher's per-service main.go files
// (hall/main.go, gate/main.go): a cobra root command carrying a --config
// flag, config load, logger init, then a blocking Run with signal-driven
// graceful shutdown — generalized from the teacher's flag.Parse-then-
// Execute two-step (cobra only guarded a required flag there) into cobra
// actually owning the startup sequence via RunE.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"riichiserver/internal/admin"
	"riichiserver/internal/config"
	"riichiserver/internal/discovery"
	"riichiserver/internal/mahjong"
	"riichiserver/internal/mq"
	"riichiserver/internal/obs"
	"riichiserver/internal/persistence/mongo"
	"riichiserver/internal/service"
	"riichiserver/internal/session"
	"riichiserver/internal/ticket"
	"riichiserver/internal/transport"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "gameserver",
	Short: "gameserver runs one riichi mahjong game node",
	Long:  "gameserver runs one riichi mahjong game node: WebSocket transport, in-process session coordinator, and the optional etcd/NATS/mongo cross-node surface.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "configs/application.yml", "configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Load(configFile); err != nil {
		return fmt.Errorf("gameserver: %w", err)
	}
	cfg := config.Conf

	obs.Init(cfg.AppName, cfg.Log.Level)
	obs.Info("gameserver: starting node=%s listen=%s", cfg.NodeID, cfg.ListenAddr)

	replayCache, err := ticket.NewRistrettoReplayCache(100_000)
	if err != nil {
		return fmt.Errorf("gameserver: replay cache: %w", err)
	}
	minter := ticket.NewMinter(cfg.Jwt.Secret, time.Duration(cfg.Jwt.Expire)*time.Second)
	verifier := ticket.NewVerifier(cfg.Jwt.Secret, replayCache)

	ruleCfg := mahjong.RuleConfig{
		UseRedFives:        cfg.Rules.UseRedFives,
		HasKuikae:          cfg.Rules.HasKuikae,
		HasKuikaeSuji:      cfg.Rules.HasKuikaeSuji,
		PaoEnabled:         cfg.Rules.PaoEnabled,
		IncludeKanUra:      cfg.Rules.IncludeKanUra,
		KyuushuMinTypes:    cfg.Rules.KyuushuMinTypes,
		AllowDoubleYakuman: cfg.Rules.AllowDoubleYakuman,
		EndOnEastOnly:      cfg.Rules.EndOnEastOnly,
		InitialPoints:      cfg.Rules.InitialPoints,
	}
	svc := service.New(ruleCfg, nil)

	mgr := session.NewManager(svc, float64(cfg.Timers.TurnBankSeconds), float64(cfg.Timers.MeldWindowSeconds), float64(cfg.Timers.ReconnectGraceSec), cfg.ReplayDir)

	var store *mongo.Store
	if cfg.Mongo.URL != "" {
		store, err = mongo.Connect(cfg.Mongo)
		if err != nil {
			obs.Warn("gameserver: mongo disabled, connect failed: %v", err)
			store = nil
		} else {
			defer store.Close()
			wireMongoHooks(mgr, store)
		}
	}

	srv := transport.NewServer(mgr, verifier)

	var bus *mq.Bus
	if cfg.Nats.URL != "" {
		bus, err = mq.Connect(cfg.Nats.URL)
		if err != nil {
			obs.Warn("gameserver: nats bus disabled, connect failed: %v", err)
		} else {
			defer bus.Close()
			srv.SetBus(bus)
		}
	}

	var registry *discovery.Registry
	if len(cfg.Etcd.Addrs) > 0 {
		registry, err = discovery.Register(cfg.Etcd, cfg.NodeID, cfg.ListenAddr)
		if err != nil {
			obs.Warn("gameserver: discovery disabled, register failed: %v", err)
			registry = nil
		} else {
			defer registry.Close()
		}
	}

	adminSrv, err := admin.New(cfg.HTTPAddr, cfg.GrpcAddr, cfg.ReplayDir, cfg.Debug.Statsviz, &loadSampler{mgr: mgr}, mgr, minter)
	if err != nil {
		return fmt.Errorf("gameserver: admin server: %w", err)
	}
	adminSrv.Start()

	stopLoadReporter := make(chan struct{})
	if registry != nil {
		go reportLoad(mgr, registry, adminSrv, stopLoadReporter)
	}

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv}
	go func() {
		obs.Info("gameserver: websocket listener on %s", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Error("gameserver: websocket server failed: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	<-c
	obs.Info("gameserver: shutdown signal received, draining")

	close(stopLoadReporter)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	adminSrv.Shutdown(shutdownCtx)

	obs.Info("gameserver: shutdown complete")
	return nil
}

// wireMongoHooks attaches the durable-summary hooks to the session
// coordinator. Left unattached entirely when mongo is unconfigured, so the
// coordinator never touches this package in a single-node/no-persistence
// deployment.
func wireMongoHooks(mgr *session.Manager, store *mongo.Store) {
	mgr.OnGameEnd = func(entry *session.GameEntry, standings [4]mahjong.PlayerRanking) {
		players := playerInfoFromEntry(entry)
		if err := store.SaveCompleted(entry.ID, entry.RoomID, players, entry.StartedAt, time.Now(), standings, entry.ID+".ndjson"); err != nil {
			obs.Warn("gameserver: mongo save (completed) failed for game %s: %v", entry.ID, err)
		}
	}
	mgr.OnGameAborted = func(entry *session.GameEntry) {
		players := playerInfoFromEntry(entry)
		if err := store.SaveAborted(entry.ID, entry.RoomID, players, entry.StartedAt, time.Now()); err != nil {
			obs.Warn("gameserver: mongo save (aborted) failed for game %s: %v", entry.ID, err)
		}
	}
}

func playerInfoFromEntry(entry *session.GameEntry) []mongo.PlayerInfo {
	players := make([]mongo.PlayerInfo, 4)
	for i := 0; i < 4; i++ {
		players[i] = mongo.PlayerInfo{SeatIndex: i, Name: entry.Names[i], WasAI: entry.AI[i]}
	}
	return players
}

// loadSampler adapts internal/obs's gopsutil-backed sampler into the
// admin.LoadSampler interface, scaling CalculateLoad-style Score into the
// 0..1-ish figure /healthz and the etcd lease both expect.
type loadSampler struct {
	mgr *session.Manager
}

func (l *loadSampler) Sample() float64 {
	info := obs.Sample(l.mgr.ActiveGameCount(), l.mgr.ActivePlayerCount())
	return info.Score(200, 800) / 100
}

// reportLoad periodically refreshes the node's etcd lease record and the
// admin gRPC health status with a fresh load figure, mirroring the
// teacher's Monitor.Report loop.
func reportLoad(mgr *session.Manager, registry *discovery.Registry, adminSrv *admin.Server, stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	sampler := &loadSampler{mgr: mgr}
	for {
		select {
		case <-ticker.C:
			load := sampler.Sample()
			if err := registry.UpdateLoad(load); err != nil {
				obs.Warn("gameserver: load report failed: %v", err)
			}
			adminSrv.UpdateLoad(load)
		case <-stop:
			return
		}
	}
}
