// MovieRec - Preference Synchronization and Offline Resilience Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/movierec

// Package websocket pushes engine events to connected UI clients: sync
// progress, connectivity transitions and preference changes. The UI
// subscribes instead of polling the REST API.
package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/movierec/internal/logging"
)

// Message types pushed to clients.
const (
	MessageTypePing               = "ping"
	MessageTypePong               = "pong"
	MessageTypeConnectivity       = "connectivity_changed"
	MessageTypePreferencesSaved   = "preferences.saved"
	MessageTypePreferencesSynced  = "preferences.synced"
	MessageTypePreferencesCleared = "preferences.cleared"
	MessageTypeQueueDrained       = "queue_drained"
)

// Message is one event on the wire.
type Message struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub maintains the set of active clients and fans events out to them.
//
// Slow clients never block the engine: a client whose send buffer is
// full is disconnected rather than waited on.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates an empty hub. Run it under the supervisor via Serve.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Serve runs the hub loop until ctx is canceled, then closes every
// connected client and returns ctx.Err().
//
// Lifecycle events are drained before broadcasts so client state is
// consistent when a message fans out.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// String names the service in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// broadcastToClients fans a message out in client-id order. Clients
// with a full send buffer are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		logging.Warn().Uint64("client", client.id).Msg("dropped slow websocket client")
	}
}

// shutdown closes every client in id order.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	closed := len(clients)
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

// Publish implements the engine's event notifier contract: the event
// name becomes the message type. Non-blocking; events are dropped when
// the broadcast buffer is full.
func (h *Hub) Publish(event string, payload interface{}) {
	h.BroadcastJSON(event, payload)
}

// BroadcastJSON sends a typed message to all connected clients.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := Message{
		Type:      messageType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// ConnectivityData is the payload of a connectivity_changed message.
type ConnectivityData struct {
	Online bool `json:"online"`
}

// BroadcastConnectivity notifies clients of an online/offline transition.
func (h *Hub) BroadcastConnectivity(online bool) {
	h.BroadcastJSON(MessageTypeConnectivity, ConnectivityData{Online: online})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
