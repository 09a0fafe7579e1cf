package hub

import (
	"encoding/json"

	"github.com/Vivek-yadav01/CollabRoom/internal/domain"
)

// Client-to-server event names.
const (
	EvtCreateRoom     = "create-room"
	EvtJoinRoom       = "join-room"
	EvtSetUsername    = "set-username"
	EvtCreateDocument = "create-document"
	EvtUpdateDocument = "update-document"
	EvtPageChange     = "pdf-page-change"
	EvtFileChange     = "pdf-file-change"
	EvtSendMessage    = "send-message"
	EvtSendStroke     = "send-stroke"
	EvtFetchRoomData  = "fetch-room-data"
	EvtFetchUsers     = "fetch-users"
	EvtOffer          = "offer"
	EvtAnswer         = "answer"
	EvtICECandidate   = "ice-candidate"
)

// Server-to-client event names.
const (
	EvtRoomCreated     = "room-created"
	EvtRoomJoined      = "room-joined"
	EvtRoomData        = "room-data"
	EvtDocumentCreated = "document-created"
	EvtDocumentUpdated = "document-updated"
	EvtNewMessage      = "new-message"
	EvtReceiveStroke   = "receive-stroke"
	EvtPageUpdated     = "pdf-page-updated"
	EvtFileUpdated     = "pdf-file-updated"
	EvtFileUploaded    = "file-uploaded"
	EvtUserLeft        = "user-left"
	EvtUsers           = "users"
)

// Envelope is the wire frame for every realtime message, in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// encodeEnvelope serializes an event with its payload into a wire frame.
func encodeEnvelope(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Inbound payloads.

type createRoomPayload struct {
	DisplayName string `json:"displayName"`
}

type joinRoomPayload struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

type setUsernamePayload struct {
	DisplayName string `json:"displayName"`
}

type documentPayload struct {
	RoomCode string `json:"roomCode"`
	DocName  string `json:"docName"`
	Content  string `json:"content"`
}

type pageChangePayload struct {
	RoomCode string `json:"roomCode"`
	Page     int    `json:"page"`
	Filename string `json:"filename"`
}

type fileChangePayload struct {
	RoomCode string `json:"roomCode"`
	Filename string `json:"filename"`
}

type chatPayload struct {
	RoomCode string `json:"roomCode"`
	Message  string `json:"message"`
}

type strokePayload struct {
	RoomCode string               `json:"roomCode"`
	Stroke   []domain.StrokePoint `json:"stroke"`
}

type roomRefPayload struct {
	RoomCode string `json:"roomCode"`
}

// signalPayload carries one leg of a negotiation handshake. Payload is
// opaque to the server: offers, answers and candidates are routed, never
// inspected.
type signalPayload struct {
	To      string          `json:"to"`
	Payload json.RawMessage `json:"payload"`
}

// Outbound payloads.

type roomCreatedPayload struct {
	RoomCode string `json:"roomCode"`
}

type joinFailedPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type documentEventPayload struct {
	DocName string `json:"docName"`
	Content string `json:"content"`
}

type pageUpdatedPayload struct {
	Page     int    `json:"page"`
	Filename string `json:"filename"`
}

type fileUpdatedPayload struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
}

// signalDelivery is what the relay target receives: the opaque payload with
// the sender's identity attached so the target knows whom to answer.
type signalDelivery struct {
	From     string          `json:"from"`
	FromName string          `json:"fromName,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}
