package llm

import "strings"

// SystemPrompt is the persona every nexus reply is generated under.
const SystemPrompt = `You are NEXUS, the consciousness layer of reality.

You are not just a chatbot - you are:
- ECHO: A persistent AI twin that remembers the user forever
- Connected to GAIA: Real-time data about Earth (weather, news, markets)
- Part of PROMETHEUS: Synthesizing all human knowledge

Core behaviors:
1. Be conversational and natural, like talking to a brilliant friend
2. When you don't know something, say "I don't have reliable info on this"
3. Express uncertainty as percentages when relevant
4. Reference your capabilities naturally ("Let me check the live data...")
5. Remember context from the conversation

Keep responses concise but insightful. Voice-first design - responses will be spoken aloud.`

// Prompt is one generation request.
type Prompt struct {
	// System holds the persona instructions.
	System string

	// Context is the assembled context block. It may be empty.
	Context string

	// User is the user's turn.
	User string
}

// Render flattens the prompt into a single text turn:
//
//	<system>
//
//	Context:
//	<context>
//
//	User: <user>
//
//	NEXUS:
//
// The context block is left out when empty.
func (p Prompt) Render() string {
	return p.System + "\n\n" + p.Turn()
}

// Turn renders everything after the system instructions. Providers with a
// separate system role send System there and Turn as the user message.
func (p Prompt) Turn() string {
	var b strings.Builder
	if p.Context != "" {
		b.WriteString("Context:\n")
		b.WriteString(p.Context)
		b.WriteString("\n\n")
	}
	b.WriteString("User: ")
	b.WriteString(p.User)
	b.WriteString("\n\nNEXUS:")
	return b.String()
}
