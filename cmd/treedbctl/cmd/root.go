// Package cmd wires treedbctl's cobra command tree. Structure follows the
// conventional cobra cmd/-package-per-subcommand layout (the teacher's
// go.mod carries cobra/pflag/viper as a direct group, but no teacher
// main.go was in the retrieval pack to mirror structurally).
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"

	"github.com/dumbnose/treedb/logging"
	"github.com/dumbnose/treedb/metrics"
)

var (
	cfgFile     string
	storeDir    string
	logLevel    string
	traceOut    bool
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "treedbctl",
	Short: "Operate a treedb baseline snapshot store",
	Long:  "treedbctl loads and saves tree.Snapshot baselines and runs change scripts against them through the transaction interpreter.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.treedbctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "./treedb-data", "LevelDB directory backing the snapshot store")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&traceOut, "trace", false, "print OpenTelemetry spans to stdout for this invocation")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics at http://<addr>/metrics for the life of the command")

	viper.BindPFlag("store-dir", rootCmd.PersistentFlags().Lookup("store-dir"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		fmt.Fprintln(os.Stderr, "metrics registration:", err)
	}
}

// setupMetricsServer starts a /metrics HTTP listener when --metrics-addr is
// set. The listener runs for the life of the process; callers don't need to
// shut it down since the CLI exits as soon as its command completes.
func setupMetricsServer() {
	if metricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			fmt.Fprintln(os.Stderr, "metrics server:", err)
		}
	}()
}

// setupTracing wires a stdout span exporter when --trace is set. It's a
// local debugging aid only: spans never leave the process, matching the
// engine's own in-process-only tracing boundary.
func setupTracing() func() {
	if !traceOut {
		return func() {}
	}
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		fmt.Fprintln(os.Stderr, "trace exporter:", err)
		return func() {}
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return func() {
		_ = tp.Shutdown(context.Background())
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".treedbctl")
		viper.AddConfigPath("$HOME")
	}
	viper.SetEnvPrefix("TREEDBCTL")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	if v := viper.GetString("store-dir"); v != "" {
		storeDir = v
	}
	if v := viper.GetString("log-level"); v != "" {
		logLevel = v
	}
}

func newLogger() *logging.Config {
	return &logging.Config{
		Level:       logLevel,
		Development: isTerminal(),
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func printf(format string, args ...any) {
	fmt.Printf(format, args...)
}
