package service

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// IQuestionService tracks the life of suggested questions and the facet
// filters their answers produce.
type IQuestionService interface {
	DetectQuestionAsked(ctx context.Context, conv *entity.ConversationContext, message entity.Message) bool
	DetectAnswer(ctx context.Context, conv *entity.ConversationContext, message entity.Message) bool
	RejectAnswer(ctx context.Context, conv *entity.ConversationContext, questionId uuid.UUID) error
	RejectAllAnswers(ctx context.Context, conv *entity.ConversationContext)
	AddFilter(ctx context.Context, conv *entity.ConversationContext, facet entity.Facet) entity.Facet
	RemoveFilter(ctx context.Context, conv *entity.ConversationContext, facetId uuid.UUID) error
}

type questionService struct {
	logger logger.ILogger
}

func NewQuestionService(log logger.ILogger) IQuestionService {
	return &questionService{logger: log}
}

// DetectQuestionAsked moves clicked questions the agent has now typed into
// the chat to AnswerPending.
func (s *questionService) DetectQuestionAsked(ctx context.Context, conv *entity.ConversationContext, message entity.Message) bool {
	if message.Type != entity.MessageTypeAgent {
		return false
	}

	text := strings.ToLower(message.Query)
	detected := false
	for _, q := range conv.Questions {
		if q.Status != entity.QuestionStatusClicked {
			continue
		}
		if strings.Contains(text, strings.ToLower(q.Text)) {
			q.Status = entity.QuestionStatusAnswerPending
			detected = true
			s.logger.Info("QuestionService", "Question asked", map[string]interface{}{
				"chat_key":    conv.ChatKey.String(),
				"question_id": q.Id.String(),
			})
		}
	}
	return detected
}

// DetectAnswer looks for one of the candidate values of each pending facet
// question in a customer message. A match answers the question and
// activates the value as a filter.
func (s *questionService) DetectAnswer(ctx context.Context, conv *entity.ConversationContext, message entity.Message) bool {
	if message.Type != entity.MessageTypeCustomer {
		return false
	}

	detected := false
	for _, q := range conv.Questions {
		if q.Status != entity.QuestionStatusAnswerPending || q.Kind != entity.QuestionKindFacet || q.Facet == nil {
			continue
		}
		for _, value := range q.Facet.FacetValues {
			if !containsWord(message.Query, value) {
				continue
			}
			q.Status = entity.QuestionStatusAnswered
			q.Facet.Answer = value
			s.AddFilter(ctx, conv, entity.NewFacet(q.Facet.FacetName, value))
			detected = true
			break
		}
	}
	return detected
}

// RejectAnswer reopens an answered question and withdraws its answer from
// the active filters.
func (s *questionService) RejectAnswer(ctx context.Context, conv *entity.ConversationContext, questionId uuid.UUID) error {
	q := conv.QuestionById(questionId)
	if q == nil {
		return ErrQuestionNotFound
	}

	if q.Facet != nil && q.Facet.Answer != "" {
		removeFacetValue(conv, q.Facet.FacetName, q.Facet.Answer)
		q.Facet.Answer = ""
	}
	q.Status = entity.QuestionStatusNone

	s.logger.Info("QuestionService", "Answer rejected", map[string]interface{}{
		"chat_key":    conv.ChatKey.String(),
		"question_id": q.Id.String(),
	})
	return nil
}

func (s *questionService) RejectAllAnswers(ctx context.Context, conv *entity.ConversationContext) {
	for _, q := range conv.Questions {
		if q.Status != entity.QuestionStatusAnswered && q.Status != entity.QuestionStatusAnswerPending {
			continue
		}
		q.Status = entity.QuestionStatusNone
		if q.Facet != nil {
			q.Facet.Answer = ""
		}
	}
	conv.MustHaveFacets = make([]entity.Facet, 0)

	s.logger.Info("QuestionService", "All answers rejected", map[string]interface{}{
		"chat_key": conv.ChatKey.String(),
	})
}

// AddFilter activates a facet. Values of a facet already active under the
// same name are merged into it.
func (s *questionService) AddFilter(ctx context.Context, conv *entity.ConversationContext, facet entity.Facet) entity.Facet {
	existing, i := conv.FacetByName(facet.Name)
	if i < 0 {
		if facet.Id == uuid.Nil {
			facet.Id = uuid.New()
		}
		facet.Values = append([]string{}, facet.Values...)
		conv.MustHaveFacets = append(conv.MustHaveFacets, facet)
		s.logger.Info("QuestionService", "Filter added", map[string]interface{}{
			"chat_key": conv.ChatKey.String(),
			"facet":    facet.Name,
		})
		return facet
	}

	for _, v := range facet.Values {
		if !existing.HasValue(v) {
			existing.Values = append(existing.Values, v)
		}
	}
	conv.MustHaveFacets[i] = existing
	return existing
}

// RemoveFilter drops an active facet and reopens the questions answered
// through it.
func (s *questionService) RemoveFilter(ctx context.Context, conv *entity.ConversationContext, facetId uuid.UUID) error {
	facet, i := conv.FacetById(facetId)
	if i < 0 {
		return ErrFacetNotFound
	}
	conv.MustHaveFacets = append(conv.MustHaveFacets[:i:i], conv.MustHaveFacets[i+1:]...)

	for _, q := range conv.Questions {
		if q.Facet == nil || q.Facet.FacetName != facet.Name {
			continue
		}
		if q.Status == entity.QuestionStatusAnswered {
			q.Status = entity.QuestionStatusNone
			q.Facet.Answer = ""
		}
	}

	s.logger.Info("QuestionService", "Filter removed", map[string]interface{}{
		"chat_key": conv.ChatKey.String(),
		"facet":    facet.Name,
	})
	return nil
}

func removeFacetValue(conv *entity.ConversationContext, name, value string) {
	facet, i := conv.FacetByName(name)
	if i < 0 {
		return
	}

	values := make([]string, 0, len(facet.Values))
	for _, v := range facet.Values {
		if !strings.EqualFold(v, value) {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		conv.MustHaveFacets = append(conv.MustHaveFacets[:i:i], conv.MustHaveFacets[i+1:]...)
		return
	}
	facet.Values = values
	conv.MustHaveFacets[i] = facet
}

// containsWord reports whether value occurs in text, ignoring case, without
// being glued to surrounding letters or digits.
func containsWord(text, value string) bool {
	if value == "" {
		return false
	}
	text = strings.ToLower(text)
	value = strings.ToLower(value)

	for offset := 0; offset <= len(text)-len(value); {
		idx := strings.Index(text[offset:], value)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(value)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
