package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/mezonai/pohledger/api"
	"github.com/mezonai/pohledger/client"
	"github.com/mezonai/pohledger/config"
	"github.com/mezonai/pohledger/events"
	"github.com/mezonai/pohledger/exception"
	"github.com/mezonai/pohledger/logx"
	"github.com/mezonai/pohledger/monitoring"
	"github.com/mezonai/pohledger/node"
	"github.com/mezonai/pohledger/poh"
	"github.com/mezonai/pohledger/ratelimit"
	"github.com/mezonai/pohledger/service"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	genesisPath string
	listenAddr  string
	roleFlag    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a ledger node",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runNode(); err != nil {
			logx.Error("NODE", "Node stopped with error: ", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the ini config file")
	runCmd.Flags().StringVarP(&genesisPath, "genesis", "g", "", "path to genesis.yml with initial airdrops (leader only)")
	runCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "HTTP listen address, overrides the config")
	runCmd.Flags().StringVarP(&roleFlag, "role", "r", "", "leader or validator, overrides the config")
}

// applyFlags overrides cfg with non-empty command line values and revalidates it.
func applyFlags(cfg *config.Config, listen, role, genesis string) error {
	if listen != "" {
		cfg.Node.ListenAddr = listen
	}
	if role != "" {
		cfg.Node.Role = config.ParseRole(role)
	}
	if genesis != "" {
		cfg.Node.GenesisPath = genesis
	}
	return cfg.Validate()
}

func runNode() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := applyFlags(cfg, listenAddr, roleFlag, genesisPath); err != nil {
		return err
	}

	monitoring.InitMetrics()
	if os.Getenv("LOG_LEVEL") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	clock := clockwork.NewRealClock()
	bus := events.NewEventBus()
	st, err := node.NewState(cfg, clock, bus)
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	logEvents(bus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiter *ratelimit.FaucetLimiter
	switch cfg.Node.Role {
	case config.RoleLeader:
		if err := applyGenesis(st, cfg.Node.GenesisPath); err != nil {
			return err
		}
		if limiter, err = ratelimit.NewFaucetLimiter(cfg.Admission.AirdropRatePerMinute, clock); err != nil {
			return fmt.Errorf("init faucet limiter: %w", err)
		}
		if cfg.Poh.TickIntervalMs > 0 {
			svc := poh.NewPohService(func() error {
				_, err := st.Tick()
				return err
			}, time.Duration(cfg.Poh.TickIntervalMs)*time.Millisecond, clock)
			svc.Start()
			defer svc.Stop()
		} else {
			logx.Info("NODE", "Tick service disabled; the clock advances only through POST /tick")
		}
	case config.RoleValidator:
		if cfg.Node.FollowURL != "" {
			source := client.NewClient(client.DefaultConfig(cfg.Node.FollowURL))
			interval := time.Duration(cfg.Node.FollowIntervalMs) * time.Millisecond
			if interval <= 0 {
				interval = config.DefaultFollowIntervalMs * time.Millisecond
			}
			follower := node.NewFollower(st, source, interval, clock)
			follower.Start(ctx)
			defer func() { <-follower.Done() }()
		}
	}

	server := api.NewAPIServer(st, service.NewHealthService(st, clock), cfg.Node.ListenAddr, limiter)
	server.Start()
	logx.Info("NODE", fmt.Sprintf("Node running role=%s listen=%s", cfg.Node.Role, cfg.Node.ListenAddr))

	<-ctx.Done()
	logx.Info("NODE", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func applyGenesis(st *node.State, path string) error {
	if path == "" {
		return nil
	}
	genesis, err := config.LoadGenesisConfig(path)
	if err != nil {
		return err
	}
	for _, a := range genesis.Airdrops {
		if err := st.Airdrop(a.Address, a.Amount); err != nil {
			return fmt.Errorf("genesis airdrop to %s: %w", a.Address, err)
		}
	}
	return nil
}

func logEvents(bus *events.EventBus) {
	_, ch := bus.Subscribe()
	exception.SafeGo("eventLogger", func() {
		for ev := range ch {
			switch e := ev.(type) {
			case *events.SlotClosed:
				logx.Info("EVENT", fmt.Sprintf("%s slot=%d entries=%d txs=%d", e.Type(), e.Slot, e.Entries, e.TxCount))
			case *events.SlotsIngested:
				logx.Info("EVENT", fmt.Sprintf("%s last_slot=%d entries=%d bank_hash=%s", e.Type(), e.LastSlot, e.EntriesApplied, e.BankHash))
			default:
				logx.Debug("EVENT", fmt.Sprintf("%s key=%s", ev.Type(), ev.Key()))
			}
		}
	})
}
