package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"locator/internal/config"
	"locator/internal/metrics"
	m "locator/internal/mosquitto"
	"locator/internal/position"
	"locator/internal/recorder"
	"locator/internal/storage"
	"locator/internal/uart"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to YAML config (default: ./config.yaml if present).")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	// Настройка логгера
	log := cfg.Log.NewLogger(os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Error("locator stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	mtr := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, reg, log); err != nil {
				log.Error("metrics server failed", "err", err)
			}
		}()
	}

	models, err := cfg.Beacons.Ranging()
	if err != nil {
		return err
	}

	store := storage.NewStorage()
	ps := position.NewPositionService(store, cfg.Beacons.Coords(), cfg.Resolver.MaxAge, mtr, log)

	// Клиент MQTT брокера: принимает результаты сканирования и публикует позиции
	handler := m.NewHandler(store, cfg.Beacons.Names(), models, mtr, log)
	client, err := m.NewClient(m.Config{
		Broker:         cfg.MQTT.Broker,
		ClientId:       cfg.MQTT.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		Topics:         []string{cfg.MQTT.ScanTopic},
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
	}, handler, log)
	if err != nil {
		return err
	}
	defer client.Close()
	log.Info("service connected to broker", "broker", cfg.MQTT.Broker)

	rec, err := recorder.NewRecorder(ps, cfg.Recorder.Path, log)
	if err != nil {
		return err
	}
	defer rec.Close()
	rec.SetFailureObserver(mtr)

	if cfg.MQTT.PositionTopic != "" {
		rec.AddSink("mqtt", m.NewPositionPublisher(client, cfg.MQTT.PositionTopic))
	}

	if cfg.Serial.Enabled {
		port, err := uart.Open(cfg.Serial.Path, cfg.Serial.PortOptions())
		if err != nil {
			return err
		}
		w := uart.NewWriter(port, log)
		defer w.Close()
		rec.AddSink("uart", w)
		log.Info("uart output enabled", "path", cfg.Serial.Path)
	}

	rec.Start(ctx, cfg.Resolver.Interval)
	return nil
}
