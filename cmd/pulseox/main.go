// Command pulseox runs the oximeter on real hardware: LEDs and an ADS1115
// probe plus an SSD1306 panel, looping until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/motwiaska/pulseox"
	"github.com/motwiaska/pulseox/oled"
	"github.com/motwiaska/pulseox/probe"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "path to YAML config (defaults used when empty)")
		i2cBus  = flag.String("i2c", "", "I2C bus name shared by the ADC and the panel")
	)
	flag.Parse()

	cfg := pulseox.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = pulseox.LoadConfig(*cfgPath); err != nil {
			log.Fatal(err)
		}
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	sensor, err := probe.New(
		probe.OnBus(*i2cBus),
		probe.WithLogger(logger.Named("probe")),
	)
	if err != nil {
		logger.Fatal("probe init failed", zap.Error(err))
	}
	defer sensor.Close()

	panel, err := oled.New(
		oled.OnBus(*i2cBus),
		oled.WithLogger(logger.Named("oled")),
	)
	if err != nil {
		logger.Fatal("display init failed", zap.Error(err))
	}
	defer panel.Halt()

	ox, err := pulseox.New(sensor, sensor, panel,
		pulseox.WithConfig(cfg),
		pulseox.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("pipeline init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ox.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("pipeline stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}

func newLogger(cfg pulseox.LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
