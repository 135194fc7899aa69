package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/croplink/fieldstation/internal/control"
	"github.com/croplink/fieldstation/internal/display"
	"github.com/croplink/fieldstation/internal/health"
	"github.com/croplink/fieldstation/internal/loop"
	"github.com/croplink/fieldstation/internal/recommend"
	"github.com/croplink/fieldstation/internal/sensor"
	"github.com/croplink/fieldstation/internal/telemetry"
	"github.com/croplink/fieldstation/internal/upload"
	mqttpkg "github.com/croplink/fieldstation/pkg/mqtt"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	if cfg.UploadURL == "" {
		log.Fatal("missing required env UPLOAD_URL")
	}

	// ---- Threshold table ----
	rules := recommend.DefaultRules()
	if cfg.RulesConfigPath != "" {
		var err error
		if rules, err = recommend.LoadRules(cfg.RulesConfigPath); err != nil {
			log.Fatalf("load rules config: %v", err)
		}
		log.Printf("loaded %d threshold rules from %s", len(rules), cfg.RulesConfigPath)
	}
	engine := recommend.NewEngine(rules)

	// ---- Sensor source ----
	var src sensor.Source
	if cfg.SimMode {
		log.Printf("SIM_MODE: using simulated sensor source")
		src = sensor.NewSimSource()
	} else {
		ranges := sensor.DefaultRanges()
		if cfg.RangesConfigPath != "" {
			var err error
			if ranges, err = sensor.LoadRanges(cfg.RangesConfigPath); err != nil {
				log.Fatalf("load ranges config: %v", err)
			}
		}
		bus, err := sensor.OpenDevBus(cfg.I2CBusPath)
		if err != nil {
			log.Fatalf("open sensor bus: %v", err)
		}
		defer bus.Close()

		src = sensor.NewReader([]sensor.Probe{
			sensor.NewNPKProbe(bus, byte(cfg.NPKAddr)),
			sensor.NewSHTProbe(bus, byte(cfg.SHTAddr)),
		}, ranges, cfg.SensorReadTimeout)
	}

	// ---- Upload client ----
	status := health.NewStatus()
	uploader, err := upload.NewClient(upload.Config{
		URL:            cfg.UploadURL,
		APIKey:         cfg.UploadAPIKey,
		MaxAttempts:    cfg.UploadMaxAttempts,
		AttemptTimeout: cfg.UploadTimeout,
	}, status)
	if err != nil {
		log.Fatalf("upload client init: %v", err)
	}

	// ---- Sinks: local display always, broker telemetry when configured ----
	sinks := []display.Sink{display.LogSink{}}

	var broker paho.Client
	if cfg.MQTTHost != "" {
		broker, err = mqttpkg.NewConn(&mqttpkg.Config{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			User:     cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
		}, ctx)
		if err != nil {
			log.Fatalf("mqtt connect failed: %v", err)
		}
		pub := mqttpkg.NewPublisher(broker, cfg.TelemetryTopic)
		sinks = append(sinks, telemetry.NewReporter(cfg.DeviceID, pub))
	}

	lp := loop.New(src, engine, sinks, uploader, cfg.SampleInterval)

	// ---- Remote pause/resume over the control topic ----
	if broker != nil {
		consumer := mqttpkg.NewConsumer(broker, cfg.ControlTopic, 1, nil)
		ctrl := control.NewController(consumer, lp)
		go ctrl.Start(ctx)
	}

	// ---- Health / metrics HTTP ----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           health.NewMux(broker, status),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("station HTTP listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	lp.Run(ctx)

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
	log.Println("station: shutdown complete")
}
