package identity

import (
	"errors"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"
)

// ErrMalformedOrigin is returned when an origin carries no usable nickname
var ErrMalformedOrigin = errors.New("malformed origin")

// statusPrefixes are the membership symbols a NAMES reply puts in front of a nick
const statusPrefixes = "~&@%+"

// channelPrefixes are the characters a channel name may start with
const channelPrefixes = "#&+!"

// BareNick extracts the nickname from a full origin (nick!user@host)
func BareNick(origin string) (string, error) {
	if origin == "" {
		return "", ErrMalformedOrigin
	}
	nuh, err := ircmsg.ParseNUH(origin)
	if err != nil || nuh.Name == "" {
		return "", ErrMalformedOrigin
	}
	return nuh.Name, nil
}

// StripStatusPrefix removes every leading status symbol from a NAMES token
func StripStatusPrefix(token string) string {
	return strings.TrimLeft(token, statusPrefixes)
}

// IsChannel reports whether target names a channel rather than a user
func IsChannel(target string) bool {
	return target != "" && strings.ContainsRune(channelPrefixes, rune(target[0]))
}
