package domain

import "sort"

// Snapshot is the full current state of a Room as sent to a client on join
// or explicit fetch. Late joiners replay Strokes to rebuild the whiteboard.
type Snapshot struct {
	RoomCode       string            `json:"roomCode"`
	Members        []string          `json:"members"`
	DisplayNames   map[string]string `json:"displayNames"`
	Documents      map[string]string `json:"documents"`
	Chat           []ChatMessage     `json:"chat"`
	Files          []FileInfo        `json:"files"`
	ActiveDocument ActiveDocument    `json:"activeDocument"`
	Strokes        []StrokePoint     `json:"strokes"`
}

// Snapshot copies the room state into a wire-ready view. Everything is
// copied so the caller can serialize it after leaving the registry lock.
func (r *Room) Snapshot() Snapshot {
	members := make([]string, 0, len(r.Members))
	for id := range r.Members {
		members = append(members, id)
	}
	sort.Strings(members)

	names := make(map[string]string, len(r.DisplayNames))
	for id, name := range r.DisplayNames {
		names[id] = name
	}
	docs := make(map[string]string, len(r.Documents))
	for name, content := range r.Documents {
		docs[name] = content
	}

	return Snapshot{
		RoomCode:       r.Code,
		Members:        members,
		DisplayNames:   names,
		Documents:      docs,
		Chat:           append([]ChatMessage{}, r.Chat...),
		Files:          append([]FileInfo{}, r.Files...),
		ActiveDocument: r.ActiveDocument,
		Strokes:        append([]StrokePoint{}, r.Strokes...),
	}
}
