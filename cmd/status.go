package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provault/logx"
)

type StatusConfig struct {
	NodeURL string
	Events  int
}

var statusConfig StatusConfig

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vault state of a running node",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStatus(statusConfig); err != nil {
			logx.Error("STATUS CLI", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusConfig.NodeURL, "node-url", "u", "http://localhost:9090", "custody node URL")
	statusCmd.Flags().IntVar(&statusConfig.Events, "events", 0, "also print the last N events")
}

func runStatus(cfg StatusConfig) error {
	c, err := createClient(cfg.NodeURL)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	health, err := c.CheckHealth(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	fmt.Printf("node:    %s (%s)\n", cfg.NodeURL, health.Status)

	master, err := c.GetMaster(ctx)
	if err != nil {
		return fmt.Errorf("get master: %w", err)
	}
	fmt.Printf("vault:   %s\n", master.MasterAddress)
	fmt.Printf("native:  %s (reserve %s)\n", master.NativeBalance, master.Reserve)
	fmt.Printf("token:   %s", master.TokenBalance)
	if master.TokenAccount != "" {
		fmt.Printf(" (account %s)", master.TokenAccount)
	}
	fmt.Println()
	fmt.Printf("admin:   %s\n", master.Admin)
	fmt.Printf("operator:%s\n", master.Operator)
	fmt.Printf("last withdraw attempt: %d\n", master.LastWithdrawTime)

	if cfg.Events > 0 {
		res, err := c.GetEvents(ctx, 1, 1)
		if err != nil {
			return fmt.Errorf("get events: %w", err)
		}
		fromSeq := uint64(1)
		if res.NextSeq > uint64(cfg.Events) {
			fromSeq = res.NextSeq - uint64(cfg.Events)
		}
		tail, err := c.GetEvents(ctx, fromSeq, cfg.Events)
		if err != nil {
			return fmt.Errorf("get events: %w", err)
		}
		for _, ev := range tail.Events {
			fmt.Printf("event %d: %s user=%s amount=%s time=%d\n", ev.Seq, ev.Type, ev.User, ev.Amount, ev.Time)
		}
	}
	return nil
}
