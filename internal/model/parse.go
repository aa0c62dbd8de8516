package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robalobadob/connections-bot/internal/game"
)

// ParsedGuesses is a well-formed model response, most confident first.
type ParsedGuesses []Guess

// MalformedResponseError reports a model response that does not match the
// expected group/theme structure.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return "malformed model response: " + e.Reason
}

// groupsPayload is the JSON shape requested from the model:
// {"groups":[{"words":["A","B","C","D"],"theme":"..."}]}
type groupsPayload struct {
	Groups []struct {
		Words []string `json:"words"`
		Theme string   `json:"theme"`
	} `json:"groups"`
}

// ParseGroups decodes a JSON groups response. Every group must hold exactly
// four distinct words.
func ParseGroups(raw string) (ParsedGuesses, error) {
	body := stripFence(raw)
	var p groupsPayload
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&p); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid json: " + err.Error(), Raw: raw}
	}
	if p.Groups == nil {
		return nil, &MalformedResponseError{Reason: `missing "groups"`, Raw: raw}
	}
	out := make(ParsedGuesses, 0, len(p.Groups))
	for i, g := range p.Groups {
		words := game.ParseWordSet(g.Words...)
		delete(words, "")
		if len(g.Words) != game.GroupSize || words.Len() != game.GroupSize {
			return nil, &MalformedResponseError{
				Reason: fmt.Sprintf("group %d has %d distinct words, want %d", i+1, words.Len(), game.GroupSize),
				Raw:    raw,
			}
		}
		out = append(out, Guess{Words: words, Theme: strings.TrimSpace(g.Theme)})
	}
	return out, nil
}

// stripFence removes a surrounding ``` or ```json fence if present.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
