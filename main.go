package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"attendsync/global"
	"attendsync/initialize"
	"attendsync/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	flag.Parse()

	app, err := initialize.Build(*configPath)
	if err != nil {
		global.Logger.Fatal().Err(err).Msg("failed to build application")
	}

	if err := server.StartHTTPServer(app.Cfg.HTTP.Host, app.Cfg.HTTP.Port, app.Router); err != nil {
		global.Logger.Fatal().Err(err).Msg("failed to start http server")
	}
	global.Logger.Info().Str("host", app.Cfg.HTTP.Host).Int("port", app.Cfg.HTTP.Port).Msg("http server listening")

	app.Monitor.Start()
	app.Runner.Start()
	global.Logger.Info().
		Int("monitor_interval_sec", app.Cfg.Monitor.Interval).
		Int("scheduler_interval_sec", app.Cfg.Scheduler.PollInterval).
		Msg("background loops started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	global.Logger.Info().Msg("shutting down")
	app.Monitor.Stop()
	app.Runner.Stop()
}
