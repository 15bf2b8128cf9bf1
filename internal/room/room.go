package room

import "sort"

// Room is the live state of one channel the bot occupies
type Room struct {
	Name string

	topic    string
	hasTopic bool
	members  map[string]struct{}
}

func newRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[string]struct{}),
	}
}

// Topic returns the current topic and whether one is known
func (r *Room) Topic() (string, bool) {
	return r.topic, r.hasTopic
}

// SetTopic replaces the topic
func (r *Room) SetTopic(topic string) {
	r.topic = topic
	r.hasTopic = true
}

// Add inserts a nick. Returns true if newly added.
func (r *Room) Add(nick string) bool {
	if _, ok := r.members[nick]; ok {
		return false
	}
	r.members[nick] = struct{}{}
	return true
}

// Remove deletes a nick. Returns true if it was present.
func (r *Room) Remove(nick string) bool {
	if _, ok := r.members[nick]; !ok {
		return false
	}
	delete(r.members, nick)
	return true
}

// Has reports whether nick is a member
func (r *Room) Has(nick string) bool {
	_, ok := r.members[nick]
	return ok
}

// Rename moves membership from oldNick to newNick.
// Returns false and leaves the room untouched if oldNick is not a member.
func (r *Room) Rename(oldNick, newNick string) bool {
	if !r.Remove(oldNick) {
		return false
	}
	r.members[newNick] = struct{}{}
	return true
}

// Members returns the member nicks in sorted order
func (r *Room) Members() []string {
	nicks := make([]string, 0, len(r.members))
	for nick := range r.members {
		nicks = append(nicks, nick)
	}
	sort.Strings(nicks)
	return nicks
}

// Len returns the number of members
func (r *Room) Len() int {
	return len(r.members)
}
