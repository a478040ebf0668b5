package cmd

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"provault/config"
	"provault/exception"
	"provault/jsonrpc"
	"provault/logx"
	"provault/monitoring"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the custody node",
	Run: func(cmd *cobra.Command, args []string) {
		runNode(runConfigPath)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", config.DefaultConfigPath, "Path to config.ini")
}

func runNode(configPath string) {
	logx.InitWithStdout()
	monitoring.InitMetrics()

	nodeCfg, err := config.LoadNodeConfig(configPath)
	if err != nil {
		logx.Error("NODE", "Failed to load node config:", err)
		os.Exit(1)
	}
	eventsCfg, err := config.LoadEventsConfig(configPath)
	if err != nil {
		logx.Error("NODE", "Failed to load events config:", err)
		os.Exit(1)
	}

	stores, err := openNodeStores(configPath)
	if err != nil {
		logx.Error("NODE", "Failed to open stores:", err)
		os.Exit(1)
	}
	defer stores.Close()

	svc, eventRouter, err := stores.newVaultService(eventsCfg.SubscriberBuffer)
	if err != nil {
		logx.Error("NODE", "Failed to initialize vault service:", err)
		os.Exit(1)
	}

	rpcServer := jsonrpc.NewServer(nodeCfg.ListenAddr, svc, stores.tokenLedger, stores.accounts, eventRouter)
	if corsCfg, ok := jsonrpc.CORSFromEnv(); ok {
		rpcServer.SetCORSConfig(corsCfg)
	}
	rpcServer.Start()

	startMetricsServer(nodeCfg.MetricsAddr)

	logx.Info("NODE", "Custody node is up | rpc=", nodeCfg.ListenAddr, " | metrics=", nodeCfg.MetricsAddr)

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logx.Info("NODE", "Received signal, shutting down: ", sig.String())
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	exception.SafeGo("metrics-server", func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logx.Error("NODE", "Metrics server stopped:", err)
		}
	})
}
