package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gridsweep/internal/control"
	"gridsweep/internal/grid"
	"gridsweep/internal/model"
	"gridsweep/internal/storage"
	api "gridsweep/pkg/gridsweep"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

func (h *hub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *hub) broadcast(v any) {
	h.mu.Lock()
	list := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		if err := c.Send(v); err != nil {
			slog.Warn("client send failed", "err", err)
			h.remove(c)
			_ = c.conn.Close()
		}
	}
}

// inboundMessage is what viewers may send: paint edits a cell mid-run.
type inboundMessage struct {
	Type string `json:"type"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Cell string `json:"cell"`
}

type frame struct {
	Type   string                 `json:"type"`
	Tick   int                    `json:"tick"`
	Rows   []string               `json:"rows"`
	Agents map[string]model.Point `json:"agents"`
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	scenarioPath := fs.String("scenario", "", "HCL scenario file")
	strategy := fs.String("strategy", "", "centralized|decentralized (overrides scenario)")
	seed := fs.Int64("seed", 0, "simulation seed (overrides scenario)")
	watchdog := fs.Int("watchdog-factor", 0, "watchdog budget as a multiple of the cell count")
	tickMS := fs.Int("tick-ms", 100, "delay between streamed ticks in milliseconds")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "gridsweep.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	h := newHub()
	// Paint edits are queued and applied between ticks so the simulation
	// goroutine is the only grid writer.
	paints := make(chan inboundMessage, 64)
	delay := time.Duration(*tickMS) * time.Millisecond

	onTick := func(tick int, g *grid.Grid, c control.Controller) {
		for {
			select {
			case msg := <-paints:
				cell, ok := parseCellName(msg.Cell)
				if !ok {
					slog.Warn("unknown cell name", "cell", msg.Cell)
					continue
				}
				p := model.Point{Row: msg.Row, Col: msg.Col}
				if err := g.SetCell(p, cell); err != nil {
					slog.Warn("paint rejected", "err", err)
				}
			default:
				h.broadcast(buildFrame(tick, g, c))
				time.Sleep(delay)
				return
			}
		}
	}

	go func() {
		summary, err := client.Run(ctx, api.RunRequest{
			ScenarioPath:   *scenarioPath,
			Strategy:       *strategy,
			Seed:           *seed,
			WatchdogFactor: *watchdog,
			OnTick:         onTick,
		})
		if err != nil {
			slog.Error("run failed", "err", err)
			h.broadcast(map[string]string{"type": "error", "error": err.Error()})
			return
		}
		slog.Info("run complete", "run_id", summary.RunID,
			"ticks", summary.Ticks, "finished", summary.Finished, "aborted", summary.Aborted)
		h.broadcast(map[string]any{
			"type":       "done",
			"run_id":     summary.RunID,
			"ticks":      summary.Ticks,
			"finished":   summary.Finished,
			"aborted":    summary.Aborted,
			"violations": summary.Violations,
		})
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("upgrade failed", "err", err)
			return
		}
		c := &wsClient{conn: conn}
		h.add(c)

		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				break
			}
			if msg.Type == "paint" {
				select {
				case paints <- msg:
				default:
					slog.Warn("paint queue full, edit dropped")
				}
			}
		}

		h.remove(c)
		_ = conn.Close()
	})

	slog.Info("serving", "addr", *addr)
	return http.ListenAndServe(*addr, mux)
}

func buildFrame(tick int, g *grid.Grid, c control.Controller) frame {
	agents := make(map[string]model.Point)
	for kind, p := range c.AgentLocations() {
		agents[kind.String()] = p
	}
	return frame{
		Type:   "frame",
		Tick:   tick,
		Rows:   strings.Split(strings.TrimRight(g.String(), "\n"), "\n"),
		Agents: agents,
	}
}

func parseCellName(name string) (model.Cell, bool) {
	switch name {
	case "empty":
		return model.Empty, true
	case "dry":
		return model.DryTrash, true
	case "wet":
		return model.WetTrash, true
	case "dusty":
		return model.Dusty, true
	case "soaked":
		return model.Soaked, true
	case "bin":
		return model.Bin, true
	case "wall":
		return model.Wall, true
	default:
		return model.Empty, false
	}
}
