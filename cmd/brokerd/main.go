package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	konghcl "github.com/alecthomas/kong-hcl/v2"

	"github.com/josefk31/kafka/apis"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/fetchsession"
	log "github.com/josefk31/kafka/logger"
	"github.com/josefk31/kafka/metrics"
)

type arguments struct {
	Config  kong.ConfigFlag   `help:"Path to config file" type:"existingfile" required:""`
	Broker  apis.Conf         `help:"Broker configuration" embed:"" prefix:""`
	Session fetchsession.Conf `help:"Fetch session configuration" embed:"" prefix:"session-"`
	Metrics metrics.Conf      `help:"Metrics endpoint configuration" embed:"" prefix:"metrics-"`
	Log     log.Config        `help:"Configuration for the logger" embed:"" prefix:"log-"`
}

func logErrorAndExit(msg string) {
	log.Errorf(msg)
	os.Exit(1)
}

func main() {
	defer common.PanicHandler()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		logErrorAndExit(err.Error())
	}
	if err := cfg.Log.Configure(); err != nil {
		logErrorAndExit(err.Error())
	}
	if err := cfg.Broker.Validate(); err != nil {
		logErrorAndExit(err.Error())
	}
	if err := cfg.Session.Validate(); err != nil {
		logErrorAndExit(err.Error())
	}

	metricsServer := metrics.NewServer(cfg.Metrics)
	metricsServer.Start()
	log.Infof("broker %d started", cfg.Broker.NodeID)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	log.Warnf("signal: %s received. broker will be closed", sig.String())
	if err := metricsServer.Stop(); err != nil {
		log.Warnf("failure in stopping metrics server: %v", err)
	}
}

func loadConfig(args []string) (*arguments, error) {
	cfg := &arguments{}
	parser, err := kong.New(cfg, kong.Configuration(konghcl.Loader))
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
