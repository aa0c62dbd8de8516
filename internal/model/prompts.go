package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robalobadob/connections-bot/internal/game"
)

const systemBase = `You are solving a word puzzle. You will be given a list of words that split into groups of 4. Every group shares a hidden connection. List each group of 4 words together with its connection, most confident group first.

Example groups:
- Fish: Bass, Flounder, Salmon, Trout
- Fire _: Ant, Drill, Island, Opal
- Fruit Homophones: Lyme, Mellon, Pair, Plumb
- Touchscreen Gestures: Pinch, Spread, Swipe, Tap

Each word belongs to exactly one group and every group has exactly 4 words. A connection such as "Random words" or "Unrelated words" is not allowed.`

const convertToJSON = `Convert your answer to JSON. The top-level object has a "groups" array; each entry has a "words" array of 4 strings and a "theme" string. Keep the same order, most confident first. Use the words exactly as given.
Shape: {"groups":[{"words":["A","B","C","D"],"theme":"..."}]}`

// SystemPrompt returns the system message for a board of the given size.
func SystemPrompt(remaining int) string {
	groups := remaining / game.GroupSize
	return fmt.Sprintf("%s\nProvide %d groups of 4 words each.", systemBase, groups)
}

// WordsPrompt lists the remaining words as a JSON array in stable order.
func WordsPrompt(words game.WordSet) string {
	b, _ := json.Marshal(words.Strings())
	return string(b)
}

// CorrectionPrompt describes a rejected group to the model.
func CorrectionPrompt(c *Correction) string {
	if c == nil {
		return ""
	}
	list := strings.Join(c.Words.Strings(), ", ")
	switch c.Kind {
	case SwapOne:
		return fmt.Sprintf("The group [%s] was one word away: exactly 3 of these words belong together. "+
			"Your first group must keep 3 of them and swap exactly one word for another word from the list.", list)
	default:
		return fmt.Sprintf("The group [%s] is wrong. Do not propose these 4 words together again; "+
			"try an entirely different grouping.", list)
	}
}

// ConvertToJSONPrompt is the follow-up asking for the structured answer.
func ConvertToJSONPrompt() string { return convertToJSON }

// BuildConversation assembles the first request for a proposal.
func BuildConversation(words game.WordSet, hint *Correction) Conversation {
	c := NewConversation().
		System(SystemPrompt(words.Len())).
		User(WordsPrompt(words))
	if hint != nil {
		c = c.User(CorrectionPrompt(hint))
	}
	return c
}
