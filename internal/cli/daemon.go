package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/galligan/pickme/internal/daemon"
)

var daemonIdleTimeout time.Duration

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the search daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the search daemon in the foreground",
	Long: `Run the search daemon in the foreground.

The daemon serves NDJSON search requests over a Unix socket and exits 0 on
any clean shutdown: idle timeout, stop request, or signal. If another
instance already holds the socket, this one exits 0 immediately.`,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running search daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonStartCmd.Flags().DurationVar(&daemonIdleTimeout, "idle-timeout", 0, "shut down after this much inactivity (default 30m)")
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	return daemon.Run(daemon.RunOptions{
		Cfg:         cfg,
		SocketPath:  socketPath(cfg),
		DBPath:      dbPath(),
		IdleTimeout: daemonIdleTimeout,
	})
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := daemon.NewClient(socketPath(cfg))
	resp, err := client.Stop(ctx)
	if err != nil {
		if daemon.IsConnectionError(err) {
			fmt.Println("Daemon not running")
			return nil
		}
		return fmt.Errorf("stop daemon: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("stop daemon: %s", resp.Error)
	}

	fmt.Println("Daemon stopped")
	return nil
}
