package domain

// InboundEvent is one decoded Slack Events API delivery. It is constructed
// once per webhook request and never mutated afterwards.
type InboundEvent struct {
	ChannelID string
	Type      string
	Subtype   string
	AuthorID  string // raw Slack user id ("U123..."), empty when absent
	BotID     string
	Text      string
	Timestamp string // Slack "ts" token, opaque
}

// EventID derives the deduplication key for this delivery. Slack retries a
// delivery with the same channel and ts, so the pair identifies an event.
func (e InboundEvent) EventID() string {
	return e.ChannelID + "-" + e.Timestamp
}

// AuthorToken returns the acting author's identity token ("<@U123>"), or the
// empty string when the event carries no author.
func (e InboundEvent) AuthorToken() string {
	if e.AuthorID == "" {
		return ""
	}
	return "<@" + e.AuthorID + ">"
}

// IsPlainMessage reports whether the event is an ordinary user message.
// Messages posted by bots (bot_id set, or the bot_message subtype) are not
// processed by the pipeline.
func (e InboundEvent) IsPlainMessage() bool {
	return e.Type == "message" && e.Subtype != "bot_message" && e.BotID == ""
}
