package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	pkg "github.com/ripplechat/synccore/pkg/internal"
	"github.com/ripplechat/synccore/pkg/internal/connection"
	"github.com/ripplechat/synccore/pkg/internal/models"
	"github.com/ripplechat/synccore/pkg/internal/rest"
	"github.com/ripplechat/synccore/pkg/internal/services"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	color.New(color.FgCyan, color.Bold).Printf("Synccore v%s\n", pkg.AppVersion)

	// Stream gateway
	connOpts, err := connection.OptionsFromConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when validating gateway settings.")
	}
	conn := connection.NewManager(connOpts)

	// REST collaborators
	restOpts, err := rest.OptionsFromConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when validating rest settings.")
	}
	backend := rest.NewClient(restOpts)

	account := models.Account{
		ID:       viper.GetString("session.user_id"),
		Username: viper.GetString("session.username"),
	}

	session := services.NewSession(account, conn, backend, services.LoggerNotifier{}, nil)

	if err := conn.Connect(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connecting to stream gateway.")
	}
	if err := session.Start(); err != nil {
		log.Warn().Err(err).Msg("An error occurred when seeding session state.")
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 1s", session.Typing.Sweep)
	quartz.AddFunc("@every 1s", session.Outbox.Sweep)
	quartz.AddFunc("@every 30s", session.Anchors.Flush)
	quartz.Start()

	log.Info().Msgf("Synccore v%s is started...", pkg.AppVersion)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msgf("Synccore v%s is quitting...", pkg.AppVersion)

	quartz.Stop()
	session.Anchors.Flush()
	session.Stop()
	conn.Disconnect()
}
