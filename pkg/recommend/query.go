package recommend

import (
	"sort"
	"strings"

	"agent-assist-be/internal/entity"
)

// CreateQuery builds a keyword window of at most numberOfWords words from the
// parsed queries of relevant customer messages. Newer messages fill the
// window first; duplicates are compared case-insensitively.
func CreateQuery(conv *entity.ConversationContext, numberOfWords int) string {
	selected := make([]string, 0, numberOfWords)
	seen := make(map[string]bool)
	queue := make([]string, 0)

	next := len(conv.ContextItems) - 1
	for len(selected) < numberOfWords {
		if len(queue) == 0 {
			item, ok := previousCustomerItem(conv.ContextItems, &next)
			if !ok {
				break
			}
			queue = append(queue, strings.Fields(item.Analysis.ParsedQuery)...)
			continue
		}

		word := queue[0]
		queue = queue[1:]
		key := strings.ToLower(word)
		if seen[key] {
			continue
		}
		seen[key] = true
		selected = append(selected, word)
	}

	return strings.Join(selected, " ")
}

func previousCustomerItem(items []entity.ContextItem, next *int) (entity.ContextItem, bool) {
	for *next >= 0 {
		item := items[*next]
		*next--
		if item.IsRelevant && item.Message.Type == entity.MessageTypeCustomer {
			return item, true
		}
	}
	return entity.ContextItem{}, false
}

// ContextEntities returns the distinct tokens of the parsed queries of the
// last window relevant items, sorted. Irrelevant items do not count toward
// the window.
func ContextEntities(conv *entity.ConversationContext, window int) []string {
	seen := make(map[string]bool)
	entities := make([]string, 0)

	scanned := 0
	for i := len(conv.ContextItems) - 1; i >= 0 && scanned < window; i-- {
		item := conv.ContextItems[i]
		if !item.IsRelevant {
			continue
		}
		scanned++
		for _, token := range strings.Fields(item.Analysis.ParsedQuery) {
			if !seen[token] {
				seen[token] = true
				entities = append(entities, token)
			}
		}
	}

	sort.Strings(entities)
	return entities
}

// relevantParsedTokens returns the distinct tokens of every relevant item's
// parsed query.
func relevantParsedTokens(conv *entity.ConversationContext) []string {
	seen := make(map[string]bool)
	tokens := make([]string, 0)
	for _, item := range conv.ContextItems {
		if !item.IsRelevant {
			continue
		}
		for _, token := range strings.Fields(item.Analysis.ParsedQuery) {
			if !seen[token] {
				seen[token] = true
				tokens = append(tokens, token)
			}
		}
	}
	return tokens
}

// longQuery joins the raw text of every relevant message in order.
func longQuery(conv *entity.ConversationContext) string {
	parts := make([]string, 0, len(conv.ContextItems))
	for _, item := range conv.ContextItems {
		if item.IsRelevant {
			parts = append(parts, item.Message.Query)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
