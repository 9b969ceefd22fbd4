// Command heartworm counts thirty days from the last confirmed reset, flashes
// its LED when the period is up, and advertises the remaining time over MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/heartworm/internal/config"
	"github.com/sweeney/heartworm/internal/gpio"
	"github.com/sweeney/heartworm/internal/logic"
	"github.com/sweeney/heartworm/internal/mqtt"
	"github.com/sweeney/heartworm/internal/status"
	"github.com/sweeney/heartworm/internal/timer"
	"github.com/sweeney/heartworm/internal/web"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "/etc/heartworm.yaml", "YAML config file (missing file uses defaults)")
	printState := flag.Bool("print-state", false, "Print current button level and exit")

	// Zero values mean "not given"; the config file or defaults apply.
	chip := flag.String("chip", "", "GPIO chip name")
	pinButton := flag.Int("pin-button", -1, "BCM pin number for the button")
	pinLED := flag.Int("pin-led", -1, "BCM pin number for the LED")
	tick := flag.Duration("tick", 0, "Counter tick interval")
	hold := flag.Duration("hold", 0, "Hold time required to confirm a reset")
	advertise := flag.Duration("advertise", 0, "Advertisement interval")
	static := flag.Bool("static", false, "Advertise the identity payload only")
	broker := flag.String("broker", "", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", -1, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", "", `HTTP status address ("off" to disable)`)
	wsBroker := flag.String("ws-broker", "", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if *chip != "" {
		cfg.Chip = *chip
	}
	if *pinButton >= 0 {
		cfg.PinButton = *pinButton
	}
	if *pinLED >= 0 {
		cfg.PinLED = *pinLED
	}
	if *tick > 0 {
		cfg.Tick = *tick
	}
	if *hold > 0 {
		cfg.Hold = *hold
	}
	if *advertise > 0 {
		cfg.AdvertiseInterval = *advertise
	}
	if *static {
		cfg.Rotate = false
	}
	if *broker != "" {
		cfg.Broker = *broker
	}
	if *heartbeat >= 0 {
		cfg.Heartbeat = *heartbeat
	}
	if *httpAddr == "off" {
		cfg.HTTPAddr = ""
	} else if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *wsBroker != "" {
		cfg.WSBroker = *wsBroker
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, printState bool) error {
	led, err := gpio.NewRealLED(cfg.Chip, cfg.PinLED)
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer led.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	button, err := gpio.NewRealButton(cfg.Chip, cfg.PinButton, cfg.Debounce)
	if err != nil {
		return halt(led, sigCh, fmt.Errorf("init button: %w", err))
	}
	defer button.Close()

	if printState {
		held, err := button.Held()
		if err != nil {
			return fmt.Errorf("read button: %w", err)
		}
		fmt.Printf("BUTTON: %s\n", levelString(held))
		return nil
	}

	publisher := mqtt.NewRealPublisher(mqtt.Options{
		Broker:     cfg.Broker,
		ClientID:   cfg.ClientID,
		BufferSize: cfg.BufferSize,
	})
	defer publisher.Close()

	// The client retries refused and unreachable brokers in the background, so
	// an unreachable broker shows up as a timeout, not an error.
	if err := publisher.Connect(connectTimeout); err != nil {
		if !errors.Is(err, mqtt.ErrConnectTimeout) {
			return halt(led, sigCh, err)
		}
		log.Printf("mqtt: broker not reachable yet, buffering: %v", err)
	}

	ws := resolveWSBroker(cfg.WSBroker, cfg.Broker)

	// Tracker exists before STARTUP so the snapshot is available.
	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      cfg.Tick.Milliseconds(),
		HoldMs:      cfg.Hold.Milliseconds(),
		AdvertiseMs: cfg.AdvertiseInterval.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Rotate:      cfg.Rotate,
		IdentityURL: cfg.IdentityURL,
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		WSBroker:    ws,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(publisher.IsConnected())
	tracker.SetMQTTBacklog(publisher.Buffered(), publisher.Dropped())

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

	advertiseTicker := time.NewTicker(cfg.AdvertiseInterval)
	defer advertiseTicker.Stop()

	l := &loop{
		cfg:        cfg,
		button:     button,
		led:        led,
		tick:       timer.NewPeriodic(),
		hold:       timer.NewOneShot(),
		advertise:  advertiseTicker.C,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		selector:   logic.NewSelector(cfg.IdentityURL, cfg.CompanyID, cfg.Rotate),
		now:        time.Now,
		sleep:      time.Sleep,
	}

	log.Printf("started: tick=%v hold=%v advertise=%v rotate=%v broker=%s heartbeat=%v",
		cfg.Tick, cfg.Hold, cfg.AdvertiseInterval, cfg.Rotate, cfg.Broker, cfg.Heartbeat)

	g, ctx := errgroup.WithContext(context.Background())

	var srv *web.Server
	if cfg.HTTPAddr != "" {
		srv = web.New(cfg.HTTPAddr, tracker)
		g.Go(func() error {
			log.Printf("http status server listening on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := runLoop(ctx, l, sigCh)
		if srv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if serr := srv.Shutdown(sctx); serr != nil {
				log.Printf("http shutdown: %v", serr)
			}
		}
		return err
	})

	return g.Wait()
}

// halt shows the fault pattern until a signal arrives, then returns cause.
func halt(led gpio.LED, sig <-chan os.Signal, cause error) error {
	log.Printf("fault: %v", cause)
	if err := led.StartBlink(gpio.FaultPattern); err != nil {
		log.Printf("fault pattern: %v", err)
		return cause
	}
	s := <-sig
	log.Printf("received %v during fault, exiting", s)
	if err := led.StopBlink(); err != nil {
		log.Printf("led stop: %v", err)
	}
	return cause
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

func levelString(held bool) string {
	if held {
		return "PRESSED"
	}
	return "RELEASED"
}

// resolveWSBroker converts the ws-broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" or empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" || ws == "" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
