package tracker

// Event is one already-parsed network event. The set of events is closed:
// every implementation lives in this file.
type Event interface {
	eventName() string
}

// Welcome is the server's registration reply (001). Nick is the nick we registered with.
type Welcome struct {
	Nick string
}

// Connected marks the end of registration (end of MOTD or MOTD missing)
type Connected struct{}

// Disconnected is sent when the server closes the link
type Disconnected struct {
	Reason string
}

// Numeric is a numeric reply the tracker has no dedicated event for
type Numeric struct {
	Code   int
	Origin string
	Params []string
}

// Names is one membership snapshot line (353). Nicks may carry status prefixes.
type Names struct {
	Channel string
	Nicks   []string
}

// NickChange reports Origin switching to NewNick
type NickChange struct {
	Origin  string
	NewNick string
}

type Quit struct {
	Origin string
	Reason string
}

type Join struct {
	Origin  string
	Channel string
}

type Part struct {
	Origin  string
	Channel string
	Reason  string
}

// Mode is a mode change on Target with its arguments (modes first)
type Mode struct {
	Origin string
	Target string
	Args   []string
}

// Kick reports Origin removing Nick from Channel
type Kick struct {
	Origin  string
	Channel string
	Nick    string
	Reason  string
}

// TopicChange is a topic change reported by the server
type TopicChange struct {
	Origin  string
	Channel string
	Text    string
}

// Message is a PRIVMSG. Target is a channel or the bot's own nick.
type Message struct {
	Origin string
	Target string
	Text   string
}

// Action is a CTCP ACTION (/me)
type Action struct {
	Origin string
	Target string
	Text   string
}

type Notice struct {
	Origin string
	Target string
	Text   string
}

func (Welcome) eventName() string      { return "welcome" }
func (Connected) eventName() string    { return "connected" }
func (Disconnected) eventName() string { return "disconnected" }
func (Numeric) eventName() string      { return "numeric" }
func (Names) eventName() string        { return "names" }
func (NickChange) eventName() string   { return "nick" }
func (Quit) eventName() string         { return "quit" }
func (Join) eventName() string         { return "join" }
func (Part) eventName() string         { return "part" }
func (Mode) eventName() string         { return "mode" }
func (Kick) eventName() string         { return "kick" }
func (TopicChange) eventName() string  { return "topic" }
func (Message) eventName() string      { return "privmsg" }
func (Action) eventName() string       { return "action" }
func (Notice) eventName() string       { return "notice" }
