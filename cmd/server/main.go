// Command server runs the global chat relay.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/liquemgames/globalchat/internal/chat"
	"github.com/liquemgames/globalchat/internal/config"
	"github.com/liquemgames/globalchat/internal/identity"
	"github.com/liquemgames/globalchat/internal/server"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "globalchat-server",
	Short: "Real-time global chat relay for the game client",
	Long: `globalchat-server accepts WebSocket connections from game clients,
authenticates them against the token verification service, and relays short
chat messages to every connected player.

Configuration is read from .globalchat.yml (or --config) with
GLOBALCHAT_* environment overrides, e.g. GLOBALCHAT_PORT=:3000.`,
	SilenceUsage: true,
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is .globalchat.yml)")
}

func run() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	moderator, err := chat.LoadModeratorFile(cfg.BadWordsFile)
	if err != nil {
		// Missing list means nothing gets redacted; keep the relay up and
		// make the operator aware.
		log.Printf("Warning: banned-term list unavailable (%v); moderation disabled", err)
		moderator = chat.NewModerator(nil)
	}

	registry := chat.NewRegistry()
	history := chat.NewHistory(cfg.HistoryLimit)
	verifier := identity.NewHTTPVerifier(cfg.VerifyBaseURL, cfg.VerifyOrigin, cfg.VerifyTimeout)

	admission := chat.NewAdmission(chat.AdmissionConfig{
		Origins:       chat.NewOriginPolicy(cfg.AllowedOrigins),
		Connections:   chat.NewTokenBucket(cfg.ConnectionRate.PerSecond, cfg.ConnectionRate.Burst),
		Verifier:      verifier,
		Registry:      registry,
		History:       history,
		VerifyTimeout: cfg.VerifyTimeout,
	})

	engine := chat.NewEngine(chat.EngineConfig{
		Messages:  chat.NewTokenBucket(cfg.MessageRate.PerSecond, cfg.MessageRate.Burst),
		Moderator: moderator,
		History:   history,
		Registry:  registry,
		MaxLength: cfg.MaxMessageLen,
	})

	relay := server.NewRelay(admission, engine, registry, cfg.MaxFrameBytes)
	httpServer := server.CreateServer(cfg.Port, server.SetupRoutes(relay))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received %s, shutting down", sig)
		relay.Shutdown()
		return server.ShutdownServer(httpServer, cfg.ShutdownTimeout)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
