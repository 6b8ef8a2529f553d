// Command athermo sequences the PIR reset-disconnect line and the
// peripheral supply gate, and exposes power actions over MQTT and HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/athermo/internal/automation"
	"github.com/sweeney/athermo/internal/component"
	"github.com/sweeney/athermo/internal/config"
	"github.com/sweeney/athermo/internal/gpio"
	"github.com/sweeney/athermo/internal/mqtt"
	"github.com/sweeney/athermo/internal/power"
	"github.com/sweeney/athermo/internal/status"
	"github.com/sweeney/athermo/internal/web"
)

// refreshInterval is how often connection and network status are refreshed.
const refreshInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	backend := flag.String("backend", gpio.BackendChardev, "GPIO backend: chardev or periph")
	chip := flag.String("chip", gpio.DefaultChip, "GPIO chip for the chardev backend")
	pinPIR := flag.Int("pin-pir-dis", gpio.DefaultPinPIRDis, "BCM pin for PIR_DIS (-1 to leave unconfigured)")
	pinVCC := flag.Int("pin-periph-vcc", gpio.DefaultPinPeriphVCC, "BCM pin for PERIPH_VCC (-1 to leave unconfigured)")
	broker := flag.String("broker", "", `MQTT broker address ("off" disables)`)
	httpAddr := flag.String("http", "", `HTTP status address ("off" disables)`)
	dumpConfig := flag.Bool("dump-config", false, "Print configuration and exit without touching GPIO")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(cfg, set, flagValues{
		backend:  *backend,
		chip:     *chip,
		pinPIR:   *pinPIR,
		pinVCC:   *pinVCC,
		broker:   *broker,
		httpAddr: *httpAddr,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if *dumpConfig {
		printConfig(os.Stdout, cfg)
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type flagValues struct {
	backend  string
	chip     string
	pinPIR   int
	pinVCC   int
	broker   string
	httpAddr string
}

// applyFlags overrides config values with flags given on the command line.
func applyFlags(cfg *config.Config, set map[string]bool, v flagValues) {
	if set["backend"] {
		cfg.GPIO.Backend = v.backend
	}
	if set["chip"] {
		cfg.GPIO.Chip = v.chip
	}
	if set["pin-pir-dis"] {
		cfg.GPIO.PIRDisPin = &config.PinConfig{Number: v.pinPIR}
	}
	if set["pin-periph-vcc"] {
		cfg.GPIO.PeriphVCCPin = &config.PinConfig{Number: v.pinVCC}
	}
	if set["broker"] {
		cfg.MQTT.Broker = offToEmpty(v.broker)
	}
	if set["http"] {
		cfg.HTTP.Addr = offToEmpty(v.httpAddr)
	}
}

func offToEmpty(s string) string {
	if s == "off" {
		return ""
	}
	return s
}

func run(cfg *config.Config) error {
	pirDis, closePIR := openPin(cfg, "PIR_DIS", cfg.PIRDis)
	defer closePIR()
	periphVCC, closeVCC := openPin(cfg, "PERIPH_VCC", cfg.PeriphVCC)
	defer closeVCC()

	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	var subscriber mqtt.Subscriber
	if cfg.MQTT.Broker != "" {
		client, err := mqtt.NewRealClient(mqtt.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		})
		if err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			defer client.Close()
			publisher, mqttStatus, subscriber = client, client, client
		}
	}

	tracker := status.NewTracker(time.Now(), statusConfig(cfg, pirDis, periphVCC))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	seq := power.New(pirDis, periphVCC, power.WithObserver(observer(tracker, publisher)))

	registry, err := automation.NewRegistry(seq, cfg.Automations)
	if err != nil {
		return fmt.Errorf("automations: %w", err)
	}
	queue := automation.NewQueue(cfg.QueueSize)

	// Boot runs here, on the same goroutine as runLoop.
	app := component.NewApplication()
	app.Register("athermo", seq)
	app.Setup()

	if subscriber != nil {
		if err := subscriber.SubscribeCommands(commandHandler(registry, queue)); err != nil {
			log.Printf("mqtt subscribe: %v", err)
		}
	}

	if publisher != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
		tracker.SetMQTTBuffered(mqttStatus.Pending())
		snap := tracker.Snapshot()
		startup := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startup); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, registry, queue)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: components=%d backend=%s broker=%s http=%s scripts=%d",
		app.Len(), cfg.GPIO.Backend, orOff(cfg.MQTT.Broker), orOff(cfg.HTTP.Addr), len(registry.Scripts()))

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(queue, publisher, mqttStatus, tracker, time.Now, ticker.C, sigCh)
}

// runLoop is the single execution context for power operations. Each
// request runs to completion, including any power-cycle wait, before the
// next one is taken.
func runLoop(queue *automation.Queue, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher == nil {
				return nil
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
					tracker.SetMQTTBuffered(mqttStatus.Pending())
				}
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case req := <-queue.C():
			log.Printf("action: %s (from %s)", req.Name, req.Source)
			if tracker != nil {
				tracker.SetLastAction(req.Name)
			}
			req.Action.Play()
			if tracker != nil {
				tracker.SetPending(queue.Len())
			}

		case <-tick:
			if tracker == nil {
				continue
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
				tracker.SetMQTTBuffered(mqttStatus.Pending())
			}
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			tracker.SetPending(queue.Len())
		}
	}
}

// openLine provisions hardware lines. Replaced in tests.
var openLine = gpio.Open

// openPin provisions a configured pin. Missing or failed pins come back as
// a nil OutputPin so the sequencer treats them as absent.
func openPin(cfg *config.Config, kind string, lookup func() (gpio.PinConfig, bool)) (gpio.OutputPin, func()) {
	noop := func() {}
	pc, ok := lookup()
	if !ok {
		return nil, noop
	}
	line, err := openLine(cfg.GPIO.Backend, cfg.GPIO.Chip, kind, pc)
	if err != nil {
		log.Printf("gpio: %s unavailable: %v", kind, err)
		return nil, noop
	}
	return line, func() {
		if err := line.Close(); err != nil {
			log.Printf("gpio: %v", err)
		}
	}
}

// observer records sequencer events and publishes them. It runs on the
// run loop, inside the sequencer call.
func observer(tracker *status.Tracker, publisher mqtt.Publisher) func(power.Event) {
	return func(e power.Event) {
		tracker.Record(e)
		if publisher == nil {
			return
		}
		if err := publisher.Publish(e); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

// commandHandler resolves MQTT commands and queues them for the run loop.
func commandHandler(registry *automation.Registry, queue *automation.Queue) mqtt.CommandHandler {
	return func(cmd automation.Command) {
		action, name, err := registry.Resolve(cmd)
		if err != nil {
			log.Printf("mqtt command rejected: %v", err)
			return
		}
		if err := queue.Submit(automation.Request{Name: name, Source: "mqtt", Action: action}); err != nil {
			log.Printf("mqtt command: %v", err)
		}
	}
}

func statusConfig(cfg *config.Config, pirDis, periphVCC gpio.OutputPin) status.Config {
	scripts := make([]string, 0, len(cfg.Automations))
	for _, s := range cfg.Automations {
		scripts = append(scripts, s.ID)
	}
	return status.Config{
		Backend:      cfg.GPIO.Backend,
		PIRDisPin:    pinString(pirDis),
		PeriphVCCPin: pinString(periphVCC),
		Broker:       cfg.MQTT.Broker,
		HTTPAddr:     cfg.HTTP.Addr,
		Scripts:      scripts,
	}
}

func pinString(p gpio.OutputPin) string {
	if p == nil {
		return "not configured"
	}
	return p.String()
}

// printConfig writes the resolved configuration for -dump-config.
func printConfig(w io.Writer, cfg *config.Config) {
	pin := func(kind string, pc gpio.PinConfig, ok bool) string {
		if !ok {
			return "not configured"
		}
		return gpio.Describe(kind, pc)
	}
	pir, pirOK := cfg.PIRDis()
	vcc, vccOK := cfg.PeriphVCC()

	fmt.Fprintf(w, "ATHERMO component:\n")
	fmt.Fprintf(w, "  PIR_DIS pin: %s\n", pin("PIR_DIS", pir, pirOK))
	fmt.Fprintf(w, "  PERIPH_VCC pin: %s\n", pin("PERIPH_VCC", vcc, vccOK))
	fmt.Fprintf(w, "  Boot State: %s\n", status.BootState)
	fmt.Fprintf(w, "  GPIO backend: %s (chip %s)\n", cfg.GPIO.Backend, cfg.GPIO.Chip)
	fmt.Fprintf(w, "  MQTT broker: %s\n", orOff(cfg.MQTT.Broker))
	fmt.Fprintf(w, "  HTTP: %s\n", orOff(cfg.HTTP.Addr))
	for _, s := range cfg.Automations {
		fmt.Fprintf(w, "  Script %s: %d actions\n", s.ID, len(s.Actions))
	}
}

func orOff(s string) string {
	if s == "" {
		return "off"
	}
	return s
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
