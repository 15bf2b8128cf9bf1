package room

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrAlreadyExists = errors.New("room already exists")
	ErrNotFound      = errors.New("room not found")
)

// Registry maps channel names to the rooms the bot currently occupies.
// It is not safe for concurrent use; the dispatcher owns it.
type Registry struct {
	rooms map[string]*Room
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create registers a new room for channel
func (g *Registry) Create(channel string) (*Room, error) {
	if _, ok := g.rooms[channel]; ok {
		return nil, fmt.Errorf("%s: %w", channel, ErrAlreadyExists)
	}
	r := newRoom(channel)
	g.rooms[channel] = r
	return r, nil
}

// Get returns the room for channel
func (g *Registry) Get(channel string) (*Room, error) {
	r, ok := g.rooms[channel]
	if !ok {
		return nil, fmt.Errorf("%s: %w", channel, ErrNotFound)
	}
	return r, nil
}

// Remove drops the room for channel. Returns true if it existed.
func (g *Registry) Remove(channel string) bool {
	if _, ok := g.rooms[channel]; !ok {
		return false
	}
	delete(g.rooms, channel)
	return true
}

// Rooms returns every registered room ordered by channel name
func (g *Registry) Rooms() []*Room {
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Name < rooms[j].Name
	})
	return rooms
}

// Clear forgets every room
func (g *Registry) Clear() {
	g.rooms = make(map[string]*Room)
}

// Len returns the number of registered rooms
func (g *Registry) Len() int {
	return len(g.rooms)
}
