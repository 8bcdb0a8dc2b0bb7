package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"

	"epimotion/internal/observerproto"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8080", "server base url")
		every    = flag.Int("every", 0, "frame interval in ticks (0 = server default)")
		headings = flag.Bool("headings", false, "request heading and speed columns")
		n        = flag.Int("n", 0, "exit after n frames (0 = run until interrupted)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[watch] ", log.LstdFlags|log.Lmicroseconds)

	boot, err := fetchBootstrap(*baseURL)
	if err != nil {
		logger.Fatalf("bootstrap: %v", err)
	}
	p := boot.WorldParams
	logger.Printf("world=%s run=%s tick=%d agents=%s mode=%s tick_rate=%d seed=%d",
		boot.WorldID, boot.RunID, boot.Tick, humanize.Comma(int64(p.Agents)), p.Mode, p.TickRateHz, p.Seed)

	wsURL, err := observerWSURL(*baseURL)
	if err != nil {
		logger.Fatalf("url: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{
		Type:            "SUBSCRIBE",
		ProtocolVersion: observerproto.Version,
		EveryTicks:      *every,
		Headings:        *headings,
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("send SUBSCRIBE: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	seen := 0
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		f, err := observerproto.DecodeFrame(msg)
		if err != nil {
			logger.Printf("bad frame: %v", err)
			continue
		}
		logger.Println(summarize(f).String())
		seen++
		if *n > 0 && seen >= *n {
			return
		}
	}
}

func fetchBootstrap(base string) (observerproto.BootstrapResponse, error) {
	var out observerproto.BootstrapResponse
	u := strings.TrimRight(strings.TrimSpace(base), "/") + "/admin/v1/observer/bootstrap"
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("status %s", resp.Status)
	}
	err = json.NewDecoder(resp.Body).Decode(&out)
	return out, err
}

func observerWSURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/admin/v1/observer/ws"
	return u.String(), nil
}

type frameSummary struct {
	Tick      uint64
	Agents    int
	Roaming   int
	Contained int
	CX, CY    float64
	MinX      float64
	MaxX      float64
	MinY      float64
	MaxY      float64
	MeanSpeed float64
	HasSpeed  bool
}

func summarize(f observerproto.FrameMsg) frameSummary {
	s := frameSummary{
		Tick:      f.Tick,
		Agents:    len(f.X),
		Roaming:   f.Roaming,
		Contained: f.Contained,
		MinX:      math.Inf(1),
		MaxX:      math.Inf(-1),
		MinY:      math.Inf(1),
		MaxY:      math.Inf(-1),
	}
	if s.Agents == 0 {
		s.MinX, s.MaxX, s.MinY, s.MaxY = 0, 0, 0, 0
		return s
	}
	for i := range f.X {
		x, y := f.X[i], f.Y[i]
		s.CX += x
		s.CY += y
		s.MinX = math.Min(s.MinX, x)
		s.MaxX = math.Max(s.MaxX, x)
		s.MinY = math.Min(s.MinY, y)
		s.MaxY = math.Max(s.MaxY, y)
	}
	s.CX /= float64(s.Agents)
	s.CY /= float64(s.Agents)
	if len(f.Speed) == s.Agents {
		for _, v := range f.Speed {
			s.MeanSpeed += v
		}
		s.MeanSpeed /= float64(s.Agents)
		s.HasSpeed = true
	}
	return s
}

func (s frameSummary) String() string {
	out := fmt.Sprintf("tick=%s agents=%s roaming=%s contained=%s center=(%.3f,%.3f) box=[%.3f,%.3f]x[%.3f,%.3f]",
		humanize.Comma(int64(s.Tick)), humanize.Comma(int64(s.Agents)),
		humanize.Comma(int64(s.Roaming)), humanize.Comma(int64(s.Contained)),
		s.CX, s.CY, s.MinX, s.MaxX, s.MinY, s.MaxY)
	if s.HasSpeed {
		out += fmt.Sprintf(" speed=%.4f", s.MeanSpeed)
	}
	return out
}
