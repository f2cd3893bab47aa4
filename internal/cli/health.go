package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/galligan/pickme/internal/daemon"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the daemon's health",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := daemon.NewClient(socketPath(cfg))
	resp, err := client.Health(ctx)
	if err != nil {
		if daemon.IsConnectionError(err) {
			return fmt.Errorf("daemon not running; start with: pickme daemon start")
		}
		return fmt.Errorf("health: %w", err)
	}
	if !resp.OK || resp.Health == nil {
		return fmt.Errorf("health: %s", resp.Error)
	}

	h := resp.Health
	fmt.Printf("Uptime:          %s\n", (time.Duration(h.UptimeMs) * time.Millisecond).Round(time.Second))
	fmt.Printf("RSS:             %d MiB\n", h.RSSBytes>>20)
	fmt.Printf("Generation:      %d\n", h.Generation)
	fmt.Printf("Cache hit rate:  %.1f%%\n", h.CacheHitRate*100)
	fmt.Printf("Active watchers: %d\n", h.ActiveWatchers)
	fmt.Printf("Roots:           %s\n", strings.Join(h.RootsLoaded, ", "))
	return nil
}
