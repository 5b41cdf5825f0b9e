// Command bridge reads beacon position lines from the scanner's UART and
// republishes each one as JSON on the MQTT position topic.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"locator/internal/beacon"
	"locator/internal/config"
	"locator/internal/geometry"
	m "locator/internal/mosquitto"
	"locator/internal/uart"
)

func main() {
	var configPath string
	var portPath string
	flag.StringVar(&configPath, "config", "", "Path to YAML config (default: ./config.yaml if present).")
	flag.StringVar(&portPath, "port", "", "Override serial port path (e.g. /dev/ttyUSB0).")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	if portPath != "" {
		cfg.Serial.Path = portPath
	}

	log := cfg.Log.NewLogger(os.Stdout)
	if err := run(cfg, log); err != nil {
		log.Error("bridge stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := m.NewClient(m.Config{
		Broker:         cfg.MQTT.Broker,
		ClientId:       cfg.MQTT.ClientID + "-bridge",
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, nil, log)
	if err != nil {
		return err
	}
	defer client.Close()

	port, err := uart.Open(cfg.Serial.Path, cfg.Serial.PortOptions())
	if err != nil {
		return err
	}
	defer port.Close()
	log.Info("listening on serial port", "path", cfg.Serial.Path, "baud", cfg.Serial.BaudRate)

	pub := m.NewPositionPublisher(client, cfg.MQTT.PositionTopic)
	err = uart.ReadPositions(ctx, port, log, func(l beacon.Label, p geometry.Point) error {
		log.Info("received beacon position", "beacon", l.String(), "position", p.String())
		return pub.PublishBeacon(l, p)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
