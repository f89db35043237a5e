package model

// BotName is the sender of every reply.
const BotName = "VoteBot"

// Message is one chat line rendered by the front-end.
type Message struct {
	From string `json:"from"`
	Text string `json:"text"`
}
