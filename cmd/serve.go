package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ChiragAJain/shl-recommender/internal/logger"
	"github.com/ChiragAJain/shl-recommender/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the recommendation API over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address for the http server (default :8000)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	zlog.Info("starting the shl-recommender", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zlog.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	engine, cat, err := buildEngine(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building the engine", zap.Error(err))
	}

	listen := viper.GetString("server.listen")
	if listen == "" && config.Server != nil {
		listen = config.Server.Listen
	}

	srv := server.New(server.Config{Listen: listen}, engine, cat, zlog)

	if err := srv.Run(ctx); err != nil {
		zlog.Fatal("http server failed", zap.Error(err))
	}

	zlog.Info("exiting", zap.String("reason", "server stopped"))
}
