package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/heartworm/internal/logic"
	"github.com/sweeney/heartworm/internal/mqtt"
	"github.com/sweeney/heartworm/internal/status"
)

func newTestServer(t *testing.T, cfg status.Config) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func defaultConfig() status.Config {
	return status.Config{
		TickMs:      60000,
		HoldMs:      1000,
		AdvertiseMs: 5000,
		HeartbeatMs: 900000,
		Rotate:      true,
		IdentityURL: "j2x.us/heart",
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
	}
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, defaultConfig())
	tr.Update(logic.StateWaiting, logic.ElapsedTime{Minutes: 5, Hours: 2, Days: 1}, true, logic.Counts{Ticks: 1565, Resets: 1})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.State != "WAITING" {
		t.Errorf("State: got %q, want WAITING", sj.Status.State)
	}
	if sj.Status.Remaining != (status.TimeJSON{Days: 28, Hours: 21, Minutes: 54}) {
		t.Errorf("Remaining: got %+v", sj.Status.Remaining)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("MQTT.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.MQTT.Broker)
	}
	if sj.Status.Counts.Ticks != 1565 {
		t.Errorf("Counts.Ticks: got %d, want 1565", sj.Status.Counts.Ticks)
	}
	if sj.Status.Config.TickMs != 60000 {
		t.Errorf("Config.TickMs: got %d, want 60000", sj.Status.Config.TickMs)
	}
}

func TestJSONUnknownStateBeforeStart(t *testing.T) {
	ts, _ := newTestServer(t, defaultConfig())

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.State != "UNKNOWN" {
		t.Errorf("State before start: got %q, want UNKNOWN", sj.Status.State)
	}
	if sj.Status.Ready {
		t.Error("expected Ready=false before start")
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t, defaultConfig())
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, defaultConfig())
	tr.Update(logic.StateFlashing, logic.ElapsedTime{Days: logic.PeriodDays}, true, logic.Counts{PeriodsCompleted: 1})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, `class="flashing">FLASHING<`) {
		t.Error("page should show FLASHING state")
	}
	if !strings.Contains(page, "30d 00h 00m") {
		t.Error("page should show elapsed time")
	}
	if strings.Contains(page, "mqtt.connect") {
		t.Error("live script should be absent without ws broker")
	}
}

func TestHTMLLiveScript(t *testing.T) {
	cfg := defaultConfig()
	cfg.WSBroker = "ws://192.168.1.200:9001"
	ts, _ := newTestServer(t, cfg)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	if !strings.Contains(page, "mqtt.connect") {
		t.Error("expected live script with ws broker")
	}
	// The topic is template text, not data, so html/template leaves it unescaped.
	if !strings.Contains(page, `var topic = "`+mqtt.TopicEvents+`";`) {
		t.Errorf("live script should subscribe to %s", mqtt.TopicEvents)
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t, defaultConfig())

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, defaultConfig())

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, defaultConfig())

	sj1 := getJSON(t, ts.URL+"/index.json")
	if sj1.Status.Ready {
		t.Error("expected Ready=false initially")
	}

	tr.Update(logic.StateIdle, logic.ElapsedTime{Hours: 3}, true, logic.Counts{Snoozes: 1})
	tr.SetMQTTConnected(true)

	sj2 := getJSON(t, ts.URL+"/index.json")
	if !sj2.Status.Ready {
		t.Error("expected Ready=true after update")
	}
	if sj2.Status.State != "IDLE" {
		t.Errorf("State: got %q, want IDLE", sj2.Status.State)
	}
	if sj2.Status.Elapsed.Hours != 3 {
		t.Errorf("Elapsed.Hours: got %d, want 3", sj2.Status.Elapsed.Hours)
	}
	if !sj2.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestRejectsWriteMethods(t *testing.T) {
	ts, _ := newTestServer(t, defaultConfig())

	for _, path := range []string{"/", "/index.json", "/healthz"} {
		resp, err := http.Post(ts.URL+path, "text/plain", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, resp.StatusCode)
		}
		if allow := resp.Header.Get("Allow"); allow != "GET, HEAD" {
			t.Errorf("POST %s Allow: got %q, want %q", path, allow, "GET, HEAD")
		}
	}
}

func TestResponsesAreNotCached(t *testing.T) {
	ts, _ := newTestServer(t, defaultConfig())

	for _, path := range []string{"/", "/index.json"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()

		if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
			t.Errorf("GET %s Cache-Control: got %q, want no-store", path, cc)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts, tr := newTestServer(t, defaultConfig())

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("before start: got %d, want 503", resp.StatusCode)
	}

	tr.Update(logic.StateWaiting, logic.ElapsedTime{}, true, logic.Counts{Resets: 1})

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("after start: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "WAITING\n" {
		t.Errorf("body: got %q, want %q", body, "WAITING\n")
	}
}

func TestBacklogShownWhenBuffering(t *testing.T) {
	ts, tr := newTestServer(t, defaultConfig())
	tr.SetMQTTBacklog(3, 1)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "3 buffered, 1 dropped") {
		t.Error("page should show the MQTT backlog")
	}

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.MQTT.Buffered != 3 || sj.Status.MQTT.Dropped != 1 {
		t.Errorf("MQTT backlog: got buffered=%d dropped=%d, want 3/1", sj.Status.MQTT.Buffered, sj.Status.MQTT.Dropped)
	}
}
