package dialogue

import (
	"fmt"
	"strings"

	"github.com/GameMasterRPG/GalacticConsequence/internal/npc"
)

const historyInPrompt = 5

// SystemPrompt frames the model as the NPC itself.
func SystemPrompt(rel npc.Relationship) string {
	return fmt.Sprintf(
		"You are %s, a character in a persistent galactic frontier. "+
			"Stay in character, answer in one or two sentences, and let your "+
			"current mood (%s) color your tone. Never mention game mechanics.",
		rel.NPC, rel.Mood)
}

// BuildPrompt renders the relationship snapshot and the player's message into
// the user prompt. Recent history grounds the reply in what actually happened.
func BuildPrompt(rel npc.Relationship, playerMessage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your memory of %s: trust %+d, fear %d, mood %s.\n",
		rel.Player, rel.Trust, rel.Fear, rel.Mood)

	recent := npc.History(rel, 0, historyInPrompt)
	if len(recent) > 0 {
		b.WriteString("Recent encounters, newest first:\n")
		for _, in := range recent {
			fmt.Fprintf(&b, "- %s: %s\n", in.Type, in.Description)
		}
	}

	fmt.Fprintf(&b, "\n%s says to you: %q\nYour reply:", rel.Player, playerMessage)
	return b.String()
}

// FallbackReply is the canned line used when no generator is configured or a
// call fails. Mood keyed so degraded mode still reflects the relationship.
func FallbackReply(rel npc.Relationship) string {
	switch rel.Mood {
	case "terrified":
		return fmt.Sprintf("%s backs away, eyes wide, saying nothing.", rel.NPC)
	case "fearful":
		return fmt.Sprintf("%s answers in a low, careful voice, watching the exits.", rel.NPC)
	case "hostile":
		return fmt.Sprintf("%s spits at your feet and turns away.", rel.NPC)
	case "wary":
		return fmt.Sprintf("%s gives a curt reply, keeping a hand near their holster.", rel.NPC)
	case "devoted":
		return fmt.Sprintf("%s greets you warmly, eager to help however they can.", rel.NPC)
	case "warm":
		return fmt.Sprintf("%s smiles and waves you over.", rel.NPC)
	default:
		return fmt.Sprintf("%s nods politely and waits to hear what you want.", rel.NPC)
	}
}
