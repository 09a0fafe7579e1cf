package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ChatMessage is one entry of a room's append-only chat log. Timestamps are
// assigned server-side at append time, in Unix milliseconds.
type ChatMessage struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// FileInfo describes one uploaded file as recorded against a room. Filename
// is the storage key assigned by the file store; Type is the lowercased
// extension including the dot.
type FileInfo struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	Type         string `json:"type"`
}

// ActiveDocument is the shared cursor into the currently displayed file.
// Filename is null until a file has been selected; Page is always >= 1.
type ActiveDocument struct {
	Filename *string `json:"filename"`
	Page     int     `json:"page"`
}

// StrokePoint is one point of a whiteboard gesture. A point with
// Type == "break" is a marker separating independent pen-down gestures in
// the replay log.
type StrokePoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Type string  `json:"type,omitempty"`
}

// StrokeBreak returns the marker inserted between independent gestures.
func StrokeBreak() StrokePoint {
	return StrokePoint{Type: "break"}
}

// IsBreak reports whether the point is a gesture separator.
func (p StrokePoint) IsBreak() bool {
	return p.Type == "break"
}

// PeerInfo identifies one room member for negotiation bootstrap.
type PeerInfo struct {
	PeerID      string `json:"peerId"`
	DisplayName string `json:"displayName"`
}

// Room is the unit of collaboration session state, keyed by a short
// human-typable code. A Room lives only while it has members; callers must
// only touch it inside the registry's mutation scope.
type Room struct {
	Code           string
	Members        map[string]bool
	DisplayNames   map[string]string
	Documents      map[string]string
	Chat           []ChatMessage
	Files          []FileInfo
	ActiveDocument ActiveDocument
	Strokes        []StrokePoint
	CreatedAt      time.Time
}

// NewRoom constructs an empty room with the default active-document cursor
// (no file, page 1).
func NewRoom(code string) *Room {
	return &Room{
		Code:           code,
		Members:        make(map[string]bool),
		DisplayNames:   make(map[string]string),
		Documents:      make(map[string]string),
		Chat:           []ChatMessage{},
		Files:          []FileInfo{},
		ActiveDocument: ActiveDocument{Page: 1},
		Strokes:        []StrokePoint{},
		CreatedAt:      time.Now(),
	}
}

// AddMember joins a connection to the room, recording its display name when
// one was supplied.
func (r *Room) AddMember(connID, displayName string) {
	r.Members[connID] = true
	if displayName != "" {
		r.DisplayNames[connID] = displayName
	}
}

// RemoveMember drops a connection and its recorded display name.
func (r *Room) RemoveMember(connID string) {
	delete(r.Members, connID)
	delete(r.DisplayNames, connID)
}

// Empty reports whether the room has no members left.
func (r *Room) Empty() bool {
	return len(r.Members) == 0
}

// AppendChat appends a message with a server-assigned timestamp and returns
// the stored entry.
func (r *Room) AppendChat(senderID, senderName, text string) ChatMessage {
	msg := ChatMessage{
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
	}
	r.Chat = append(r.Chat, msg)
	return msg
}

// PutDocument stores content under name. Document names are unique within a
// room: on collision the new document is renamed by inserting a timestamp
// token between the base name and the extension. Returns the name the
// content was stored under.
func (r *Room) PutDocument(name, content string) string {
	if _, taken := r.Documents[name]; taken {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		token := time.Now().UnixMilli()
		for {
			candidate := fmt.Sprintf("%s_%d%s", base, token, ext)
			if _, dup := r.Documents[candidate]; !dup {
				name = candidate
				break
			}
			token++
		}
	}
	r.Documents[name] = content
	return name
}

// UpdateDocument overwrites a document by name.
func (r *Room) UpdateDocument(name, content string) {
	r.Documents[name] = content
}

// SetActiveDocument overwrites the shared cursor wholesale. Pages below 1
// are clamped to 1.
func (r *Room) SetActiveDocument(filename string, page int) ActiveDocument {
	if page < 1 {
		page = 1
	}
	r.ActiveDocument = ActiveDocument{Filename: &filename, Page: page}
	return r.ActiveDocument
}

// MergeStroke applies the whiteboard merge rule: a gesture of more than one
// point is appended behind a break marker so replay can tell gestures apart;
// zero or one point is a clear signal and replaces the log wholesale.
func (r *Room) MergeStroke(stroke []StrokePoint) {
	if len(stroke) > 1 {
		r.Strokes = append(r.Strokes, StrokeBreak())
		r.Strokes = append(r.Strokes, stroke...)
		return
	}
	r.Strokes = append([]StrokePoint{}, stroke...)
}

// AppendFile records an uploaded file. The list is append-only until the
// room is torn down.
func (r *Room) AppendFile(f FileInfo) {
	r.Files = append(r.Files, f)
}

// Peers lists every member except requesterID, ordered by connection id so
// the newcomer initiates negotiation in a stable order.
func (r *Room) Peers(requesterID string) []PeerInfo {
	peers := make([]PeerInfo, 0, len(r.Members))
	for id := range r.Members {
		if id == requesterID {
			continue
		}
		peers = append(peers, PeerInfo{PeerID: id, DisplayName: r.DisplayNames[id]})
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].PeerID < peers[j].PeerID })
	return peers
}
