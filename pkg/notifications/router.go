package notifications

import "github.com/shelterconnect/platform/pkg/directory"

// Route decides which channels deliver the payload to one recipient.
// Database and push follow the recipient's per-class preference flags.
// Email additionally requires a high display priority or a digest opt-in,
// so routine notifications stay out of inboxes. An empty result falls back
// to the database channel: a misconfigured preference set must never make
// a notification unreachable.
func Route(p Payload, prefs directory.ChannelPreferences) []Channel {
	var channels []Channel

	if prefs.Allows(string(p.Class), string(ChannelDatabase)) {
		channels = append(channels, ChannelDatabase)
	}
	if prefs.Allows(string(p.Class), string(ChannelPush)) {
		channels = append(channels, ChannelPush)
	}
	if prefs.Allows(string(p.Class), string(ChannelEmail)) &&
		(p.Display == DisplayHigh || prefs.EmailDigest) {
		channels = append(channels, ChannelEmail)
	}

	if len(channels) == 0 {
		channels = append(channels, ChannelDatabase)
	}
	return channels
}
