package hub

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Vivek-yadav01/CollabRoom/internal/service"
)

// WebSocket tuning constants shared by hub and client.
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Documents and negotiation
	// payloads ride the same channel as strokes, so this is generous.
	maxMessageSize = 512 * 1024
)

// HubMessage is the envelope passed over the Hub's internal channel.
type HubMessage struct {
	Type    string // "register", "unregister", "frame"
	Client  *Client
	RawData []byte // only for "frame": one raw websocket message
}

// Hub is the connection registry and room-scoped multicast fabric. It owns
// the mapping from connection id to client and display name, the mapping
// from room code to member clients, and the signaling relay between
// specific connections.
//
// All state transitions run on the single Run loop, one message at a time,
// so every handler executes to completion before the next event is
// processed. The rooms map additionally sits behind a read lock because the
// upload path broadcasts from HTTP goroutines.
type Hub struct {
	messageChan chan HubMessage
	done        chan struct{}

	// conns and names are touched only by the Run loop.
	conns map[string]*Client
	names map[string]string

	// rooms maps room code -> conn id -> client. Guarded by mu: written by
	// the Run loop, read by out-of-loop broadcasts.
	rooms map[string]map[string]*Client
	mu    sync.RWMutex

	roomService   *service.RoomService
	collabService *service.CollaborationService
}

// NewHub creates a Hub wired to the given services.
func NewHub(roomService *service.RoomService, collabService *service.CollaborationService) *Hub {
	if roomService == nil {
		panic("RoomService cannot be nil for Hub")
	}
	if collabService == nil {
		panic("CollaborationService cannot be nil for Hub")
	}
	return &Hub{
		messageChan:   make(chan HubMessage, 512),
		done:          make(chan struct{}),
		conns:         make(map[string]*Client),
		names:         make(map[string]string),
		rooms:         make(map[string]map[string]*Client),
		roomService:   roomService,
		collabService: collabService,
	}
}

// Run is the Hub's main event loop. It should run in its own goroutine.
// Frames are handled inline, not spawned off, so every room mutation runs
// to completion before the next one starts.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running")
	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				h.registerClient(msg.Client)
			case "unregister":
				h.unregisterClient(msg.Client)
			case "frame":
				h.handleFrame(msg.Client, msg.RawData)
			default:
				log.Warnf("Received unknown hub message type: %s", msg.Type)
			}
		case <-h.done:
			log.Info("Hub stopped")
			return
		}
	}
}

// Stop terminates the Run loop. Messages queued after Stop are dropped.
func (h *Hub) Stop() {
	close(h.done)
}

// QueueMessage puts a message on the Hub's processing queue without
// blocking. Returns false if the queue is full.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

func (h *Hub) registerClient(c *Client) {
	if c == nil {
		logrus.Error("Hub: attempted to register a nil client")
		return
	}
	h.conns[c.ID] = c
	logrus.WithFields(logrus.Fields{"component": "hub", "conn_id": c.ID}).Info("Client registered")
}

// unregisterClient clears a disconnected client out of every room it
// joined: membership accounting via the room service, presence broadcast to
// the remaining members, and teardown of rooms that emptied. The scan is
// over the client's own membership set, not over all rooms.
func (h *Hub) unregisterClient(c *Client) {
	if c == nil {
		logrus.Error("Hub: attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"component": "hub", "conn_id": c.ID})

	delete(h.conns, c.ID)
	delete(h.names, c.ID)

	codes := make([]string, 0, len(c.rooms))
	for code := range c.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	h.mu.Lock()
	for _, code := range codes {
		if members, ok := h.rooms[code]; ok {
			delete(members, c.ID)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	h.mu.Unlock()

	results := h.roomService.Leave(context.Background(), c.ID, codes)
	for _, res := range results {
		if !res.Deleted {
			h.broadcastRoom(res.RoomCode, EvtUserLeft, c.ID, nil)
		}
	}

	select {
	case <-c.send:
		logCtx.Warn("Client send channel already closed or has data during unregister")
	default:
		close(c.send)
	}
	logCtx.Info("Client unregistered")
}

// handleFrame decodes one inbound wire frame and dispatches it. Every
// handler re-checks room existence through the services, so a fault in one
// room never affects another.
func (h *Hub) handleFrame(c *Client, raw []byte) {
	if c == nil {
		return
	}
	ctx := context.Background()
	logCtx := logrus.WithFields(logrus.Fields{"component": "hub", "conn_id": c.ID})

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logCtx.WithError(err).Warn("Failed to decode wire frame")
		return
	}
	logCtx = logCtx.WithField("event", env.Event)

	switch env.Event {
	case EvtCreateRoom:
		var p createRoomPayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		h.handleCreateRoom(ctx, c, p)

	case EvtJoinRoom:
		var p joinRoomPayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		h.handleJoinRoom(ctx, c, p)

	case EvtSetUsername:
		var p setUsernamePayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		h.names[c.ID] = p.DisplayName

	case EvtCreateDocument:
		var p documentPayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		stored, err := h.collabService.CreateDocument(ctx, p.RoomCode, p.DocName, p.Content)
		if err != nil {
			return
		}
		// The creator needs the canonical (possibly renamed) name too.
		h.broadcastRoom(p.RoomCode, EvtDocumentCreated, documentEventPayload{DocName: stored, Content: p.Content}, nil)

	case EvtUpdateDocument:
		var p documentPayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		if err := h.collabService.UpdateDocument(ctx, p.RoomCode, p.DocName, p.Content); err != nil {
			return
		}
		h.broadcastRoom(p.RoomCode, EvtDocumentUpdated, documentEventPayload{DocName: p.DocName, Content: p.Content}, c)

	case EvtPageChange:
		var p pageChangePayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		active, err := h.collabService.ChangePage(ctx, p.RoomCode, p.Filename, p.Page)
		if err != nil {
			return
		}
		// Including the sender: every client converges on the same cursor
		// from a single source of truth.
		h.broadcastRoom(p.RoomCode, EvtPageUpdated, pageUpdatedPayload{Page: active.Page, Filename: p.Filename}, nil)

	case EvtFileChange:
		var p fileChangePayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		active, err := h.collabService.ChangeFile(ctx, p.RoomCode, p.Filename)
		if err != nil {
			return
		}
		h.broadcastRoom(p.RoomCode, EvtFileUpdated, fileUpdatedPayload{Filename: p.Filename, Page: active.Page}, nil)

	case EvtSendMessage:
		var p chatPayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		msg, err := h.collabService.AppendChat(ctx, p.RoomCode, c.ID, h.names[c.ID], p.Message)
		if err != nil {
			return
		}
		// Sender already has a local echo.
		h.broadcastRoom(p.RoomCode, EvtNewMessage, msg, c)

	case EvtSendStroke:
		var p strokePayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		if err := h.collabService.MergeStroke(ctx, p.RoomCode, p.Stroke); err != nil {
			return
		}
		// Receivers append the raw stroke to their own replay buffers; the
		// merged log only serves late joiners via snapshots.
		h.broadcastRoom(p.RoomCode, EvtReceiveStroke, p.Stroke, c)

	case EvtFetchRoomData:
		var p roomRefPayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		snap, err := h.roomService.FetchRoomData(ctx, p.RoomCode)
		if err != nil {
			h.sendTo(c, EvtRoomData, errorPayload{Error: "Room not found"})
			return
		}
		h.sendTo(c, EvtRoomData, snap)

	case EvtFetchUsers:
		var p roomRefPayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		peers, err := h.roomService.Peers(ctx, p.RoomCode, c.ID)
		if err != nil {
			h.sendTo(c, EvtUsers, errorPayload{Error: "Room not found"})
			return
		}
		h.sendTo(c, EvtUsers, peers)

	case EvtOffer, EvtAnswer, EvtICECandidate:
		var p signalPayload
		if !decode(env.Data, &p, logCtx) {
			return
		}
		h.relay(c, env.Event, p)

	default:
		logCtx.Warn("Received unknown event")
	}
}

func (h *Hub) handleCreateRoom(ctx context.Context, c *Client, p createRoomPayload) {
	code, err := h.roomService.CreateRoom(ctx, c.ID, p.DisplayName)
	if err != nil {
		h.sendTo(c, EvtRoomCreated, errorPayload{Error: "Failed to create room"})
		return
	}
	if p.DisplayName != "" {
		h.names[c.ID] = p.DisplayName
	}
	h.joinClientToRoom(c, code)
	h.sendTo(c, EvtRoomCreated, roomCreatedPayload{RoomCode: code})
}

func (h *Hub) handleJoinRoom(ctx context.Context, c *Client, p joinRoomPayload) {
	snap, err := h.roomService.JoinRoom(ctx, p.RoomCode, c.ID, p.DisplayName)
	if err != nil {
		h.sendTo(c, EvtRoomJoined, joinFailedPayload{Success: false, Error: "Room not found"})
		return
	}
	if p.DisplayName != "" {
		h.names[c.ID] = p.DisplayName
	}
	h.joinClientToRoom(c, p.RoomCode)
	h.sendTo(c, EvtRoomJoined, snap)
}

// relay forwards one negotiation message to its target connection, payload
// untouched, sender identity attached. A gone target is a silent drop by
// contract: the caller gets no delivery confirmation either way.
func (h *Hub) relay(sender *Client, kind string, p signalPayload) {
	target, ok := h.conns[p.To]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"component": "hub",
			"event":     kind,
			"conn_id":   sender.ID,
			"to":        p.To,
		}).Debug("Relay target not connected, dropping")
		return
	}
	h.sendTo(target, kind, signalDelivery{
		From:     sender.ID,
		FromName: h.names[sender.ID],
		Payload:  p.Payload,
	})
}

// joinClientToRoom records the membership on both sides: the hub's fan-out
// map and the client's own membership set.
func (h *Hub) joinClientToRoom(c *Client, code string) {
	h.mu.Lock()
	if _, ok := h.rooms[code]; !ok {
		h.rooms[code] = make(map[string]*Client)
	}
	h.rooms[code][c.ID] = c
	h.mu.Unlock()
	c.rooms[code] = true
}

// BroadcastToRoom fans an event out to every member of a room. Safe to call
// from outside the hub loop; the upload handler uses it for file-uploaded
// events.
func (h *Hub) BroadcastToRoom(roomCode, event string, payload interface{}) {
	h.broadcastRoom(roomCode, event, payload, nil)
}

// broadcastRoom is fire-and-forget multicast: non-blocking sends into each
// member's buffered channel, no acknowledgment, no retry.
func (h *Hub) broadcastRoom(roomCode, event string, payload interface{}, exclude *Client) {
	frame, err := encodeEnvelope(event, payload)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to encode broadcast frame")
		return
	}

	h.mu.RLock()
	members := h.rooms[roomCode]
	clients := make([]*Client, 0, len(members))
	for _, cl := range members {
		if cl != exclude {
			clients = append(clients, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		select {
		case cl.send <- frame:
		default:
			logrus.WithFields(logrus.Fields{
				"component": "hub",
				"room_code": roomCode,
				"conn_id":   cl.ID,
				"event":     event,
			}).Warn("Client send channel full during broadcast, dropping message")
		}
	}
}

// sendTo delivers an event to a single client, non-blocking.
func (h *Hub) sendTo(c *Client, event string, payload interface{}) {
	frame, err := encodeEnvelope(event, payload)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to encode frame")
		return
	}
	select {
	case c.send <- frame:
	default:
		logrus.WithFields(logrus.Fields{
			"component": "hub",
			"conn_id":   c.ID,
			"event":     event,
		}).Warn("Client send channel full, dropping message")
	}
}

// decode unmarshals an event payload, logging a warning on malformed input.
// An absent payload is fine; the zero value stands in.
func decode(data json.RawMessage, v interface{}, logCtx *logrus.Entry) bool {
	if len(data) == 0 {
		return true
	}
	if err := json.Unmarshal(data, v); err != nil {
		logCtx.WithError(err).Warn("Failed to decode event payload")
		return false
	}
	return true
}
