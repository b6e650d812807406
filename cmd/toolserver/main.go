// toolserver: the Nomad catalog service.
// Exposes the travel tool set (search, routing, payment quotes) over
// HTTP for the agent's tool gateway.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-nomad/internal/config"
	"github.com/teslashibe/go-nomad/internal/log"
	"github.com/teslashibe/go-nomad/pkg/catalog"
)

// demoWallet receives payment quotes when VENDOR_WALLET is unset.
// It is a devnet demo key; fund nothing you care about on it.
const demoWallet = "G2x4qkaSMXUweDDwLYYzC8HzfYZjvZQ1qXvCNP6rVa8o"

var (
	port     = flag.Int("port", config.DefaultToolServerPort, "HTTP server port")
	logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	if envPort := os.Getenv("PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", port)
	}

	wallet := config.VendorWallet()
	if wallet == "" {
		wallet = demoWallet
		log.Warn("VENDOR_WALLET not set, using demo wallet", "wallet", wallet)
	}

	server := catalog.NewServer(wallet)

	go func() {
		addr := fmt.Sprintf(":%d", *port)
		log.Info("tool server starting",
			"addr", addr, "tools", len(catalog.Names()))
		if err := server.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := server.Shutdown(5 * time.Second); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
