// Package ws is the browser-facing boundary: a websocket endpoint
// carrying client intents in and state broadcasts out, plus a couple of
// plain HTTP routes.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/grimforge/initiative-api/internal/entities"
	"github.com/grimforge/initiative-api/internal/errors"
	campaignsvc "github.com/grimforge/initiative-api/internal/orchestrators/campaign"
	"github.com/grimforge/initiative-api/internal/orchestrators/session"
)

// HandlerConfig holds the dependencies for the websocket handler
type HandlerConfig struct {
	SessionService  session.Service
	CampaignService campaignsvc.Service
}

// Validate ensures all required dependencies are provided
func (c *HandlerConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.SessionService == nil {
		vb.RequiredField("SessionService")
	}
	if c.CampaignService == nil {
		vb.RequiredField("CampaignService")
	}
	return vb.Build()
}

// Handler serves the websocket endpoint and fans session state out to
// every connected device
type Handler struct {
	sessions  session.Service
	campaigns campaignsvc.Service
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHandler creates the handler and hooks it into session broadcasts
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Handler{
		sessions:  cfg.SessionService,
		campaigns: cfg.CampaignService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local-network tool, any origin may connect
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}

	h.sessions.AddListener(func(view *session.StateView) {
		h.broadcast(newStateMessage(view))
	})

	return h, nil
}

// Routes builds the HTTP router
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/campaigns", h.handleListCampaigns).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.handleWS)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	out, err := h.campaigns.ListCampaigns(r.Context(), &campaignsvc.ListCampaignsInput{})
	if err != nil {
		h.writeHTTPError(w, err)
		return
	}

	msg := newCampaignsMessage(out.Campaigns)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msg.Campaigns)
}

func (h *Handler) writeHTTPError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(errorMessage{
		Type:    "error",
		Code:    string(code),
		Message: errors.GetMessage(err),
	})
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("Device connected", "remote_addr", r.RemoteAddr)

	// Initial sync: current state and the campaign selector
	h.sendState(r.Context(), c)
	h.sendCampaigns(r.Context(), c)

	h.readLoop(r.Context(), c)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()

	slog.Info("Device disconnected", "remote_addr", r.RemoteAddr)
}

func (h *Handler) readLoop(ctx context.Context, c *client) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Websocket read failed", "error", err)
			}
			return
		}

		var msg intentMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(c, errors.InvalidArgument("malformed intent message"))
			continue
		}

		if err := h.dispatch(ctx, c, msg); err != nil {
			h.sendError(c, err)
		}
	}
}

// dispatch maps one client intent to its service operation. State
// broadcasts happen through the session listener, not here; dispatch
// only pushes campaign-list updates and per-client replies.
func (h *Handler) dispatch(ctx context.Context, c *client, msg intentMessage) error {
	switch msg.Action {
	case "addCombatant":
		var p combatantPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		_, err := h.sessions.AddCombatant(ctx, &session.AddCombatantInput{
			Name:      p.Name,
			Dex:       p.Dex,
			Modifier:  p.Modifier,
			Type:      entities.CombatantType(p.Type),
			Advantage: entities.AdvantageMode(p.Advantage),
			Lucky:     luckyFromWire(p.Lucky),
		})
		return err

	case "updateCombatant":
		var p combatantPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		_, err := h.sessions.UpdateCombatant(ctx, &session.UpdateCombatantInput{
			CombatantID: p.ID,
			Name:        p.Name,
			Dex:         p.Dex,
			Modifier:    p.Modifier,
			Type:        entities.CombatantType(p.Type),
			Advantage:   entities.AdvantageMode(p.Advantage),
			Lucky:       luckyFromWire(p.Lucky),
		})
		return err

	case "removeCombatant":
		var p targetPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		_, err := h.sessions.RemoveCombatant(ctx, &session.RemoveCombatantInput{CombatantID: p.ID})
		return err

	case "duplicateCombatant":
		var p targetPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		_, err := h.sessions.DuplicateCombatant(ctx, &session.DuplicateCombatantInput{CombatantID: p.ID})
		return err

	case "toggleAdvantage":
		var p targetPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		_, err := h.sessions.ToggleAdvantage(ctx, &session.ToggleAdvantageInput{CombatantID: p.ID})
		return err

	case "rollAll":
		_, err := h.sessions.RollAll(ctx, &session.RollAllInput{})
		return err

	case "reorder":
		var p reorderPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		_, err := h.sessions.Reorder(ctx, &session.ReorderInput{
			OrderedIDs: p.OrderedIDs,
			DraggedID:  p.DraggedID,
		})
		return err

	case "rerollLuckyFeat":
		var p targetPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		_, err := h.sessions.RerollLuckyFeat(ctx, &session.RerollLuckyFeatInput{CombatantID: p.ID})
		return err

	case "nextRound":
		_, err := h.sessions.NextRound(ctx, &session.NextRoundInput{})
		return err

	case "resetRound":
		_, err := h.sessions.ResetRound(ctx, &session.ResetRoundInput{})
		return err

	case "clearEnemies":
		_, err := h.sessions.ClearEnemies(ctx, &session.ClearEnemiesInput{})
		return err

	case "switchCampaign":
		var p campaignPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		_, err := h.sessions.SwitchCampaign(ctx, &session.SwitchCampaignInput{CampaignID: p.ID})
		return err

	case "createCampaign":
		var p campaignPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		out, err := h.campaigns.CreateCampaign(ctx, &campaignsvc.CreateCampaignInput{Name: p.Name})
		if err != nil {
			return err
		}
		if _, err := h.sessions.SwitchCampaign(ctx, &session.SwitchCampaignInput{CampaignID: out.CampaignID}); err != nil {
			return err
		}
		h.broadcastCampaigns(ctx)
		return nil

	case "renameCampaign":
		var p campaignPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		if _, err := h.campaigns.RenameCampaign(ctx, &campaignsvc.RenameCampaignInput{
			CampaignID: p.ID,
			Name:       p.Name,
		}); err != nil {
			return err
		}
		h.broadcastCampaigns(ctx)
		return nil

	case "deleteCampaign":
		var p campaignPayload
		if err := unmarshalPayload(msg.Payload, &p); err != nil {
			return err
		}
		state, err := h.sessions.GetState(ctx, &session.GetStateInput{})
		if err != nil {
			return err
		}
		out, err := h.campaigns.DeleteCampaign(ctx, &campaignsvc.DeleteCampaignInput{CampaignID: p.ID})
		if err != nil {
			return err
		}
		// A session left pointing at a deleted campaign moves to the
		// most recently used survivor
		if state.View.CampaignID == p.ID {
			if _, err := h.sessions.SwitchCampaign(ctx, &session.SwitchCampaignInput{CampaignID: out.NextCampaignID}); err != nil {
				return err
			}
		}
		h.broadcastCampaigns(ctx)
		return nil

	case "getState":
		h.sendState(ctx, c)
		h.sendCampaigns(ctx, c)
		return nil

	default:
		return errors.InvalidArgumentf("unknown action %q", msg.Action)
	}
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.InvalidArgument("payload is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.InvalidArgument("malformed payload")
	}
	return nil
}

func (h *Handler) sendState(ctx context.Context, c *client) {
	out, err := h.sessions.GetState(ctx, &session.GetStateInput{})
	if err != nil {
		h.sendError(c, err)
		return
	}
	if err := c.send(newStateMessage(out.View)); err != nil {
		slog.Warn("Failed to send state", "error", err)
	}
}

func (h *Handler) sendCampaigns(ctx context.Context, c *client) {
	out, err := h.campaigns.ListCampaigns(ctx, &campaignsvc.ListCampaignsInput{})
	if err != nil {
		h.sendError(c, err)
		return
	}
	if err := c.send(newCampaignsMessage(out.Campaigns)); err != nil {
		slog.Warn("Failed to send campaign list", "error", err)
	}
}

func (h *Handler) sendError(c *client, err error) {
	msg := errorMessage{
		Type:    "error",
		Code:    string(errors.GetCode(err)),
		Message: errors.GetMessage(err),
	}
	if sendErr := c.send(msg); sendErr != nil {
		slog.Warn("Failed to send error message", "error", sendErr)
	}
}

func (h *Handler) broadcast(msg any) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			slog.Warn("Failed to broadcast to device", "error", err)
		}
	}
}

func (h *Handler) broadcastCampaigns(ctx context.Context) {
	out, err := h.campaigns.ListCampaigns(ctx, &campaignsvc.ListCampaignsInput{})
	if err != nil {
		slog.Error("Failed to list campaigns for broadcast", "error", err)
		return
	}
	h.broadcast(newCampaignsMessage(out.Campaigns))
}
