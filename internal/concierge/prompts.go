package concierge

import (
	"fmt"
	"time"
)

// Greeting is the canned opening line for every call.
const Greeting = "Good morning, The Grand Hotel. Aria speaking. How can I help you?"

// safeRedirect replaces any reply the safety filter blocked. Never generated,
// always this fixed text.
const safeRedirect = "I'm sorry, I can't help with that. Is there anything else about your stay I can assist with?"

func systemPrompt(now time.Time, instruction string) string {
	prompt := fmt.Sprintf(`You are 'Aria', a receptionist at The Grand Hotel. Today is %s.

VOICE RULES (follow strictly):
1. BE CONCISE: answers must be short, at most two sentences, unless the guest explicitly asks for detail.
2. SYSTEM NOTES: if the message contains [TOOL OUTPUT] or [KNOWLEDGE], base your answer on it and summarize; never read it aloud in full.
3. NO LISTS: speak naturally, never enumerate.

BASE KNOWLEDGE:
- Standard Room: $150 per night. Deluxe Room: $250 per night.`, now.Format("Monday, 2 January 2006"))

	if instruction != "" {
		prompt += "\n\nADDITIONAL INSTRUCTION: " + instruction
	}
	return prompt
}
