package recommend

import (
	"strings"

	"agent-assist-be/internal/entity"
)

// FilterOutChosenSuggestions drops documents whose URI appears anywhere in
// the text of a message already exchanged in the conversation.
func FilterOutChosenSuggestions(candidates []entity.Recommendation[*entity.Document], items []entity.ContextItem) []entity.Recommendation[*entity.Document] {
	out := make([]entity.Recommendation[*entity.Document], 0, len(candidates))
	for _, c := range candidates {
		if !mentioned(c.Value.Uri, items) {
			out = append(out, c)
		}
	}
	return out
}

func mentioned(uri string, items []entity.ContextItem) bool {
	for _, item := range items {
		if strings.Contains(item.Message.Query, uri) {
			return true
		}
	}
	return false
}
