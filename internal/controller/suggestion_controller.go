package controller

import (
	"agent-assist-be/internal/dto"
	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/mapper"
	"agent-assist-be/internal/pkg/serverutils"
	"agent-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultMaxDocuments = 10
	defaultMaxQuestions = 10
)

type ISuggestionController interface {
	RegisterRoutes(r fiber.Router, withConversation fiber.Handler)
	GetSuggestion(ctx *fiber.Ctx) error
	RefreshSuggestion(ctx *fiber.Ctx) error
	SelectSuggestion(ctx *fiber.Ctx) error
	AddFilter(ctx *fiber.Ctx) error
	RemoveFilter(ctx *fiber.Ctx) error
	RejectAllAnswers(ctx *fiber.Ctx) error
	RejectAnswer(ctx *fiber.Ctx) error
}

type suggestionController struct {
	suggestionService service.ISuggestionService
	questionService   service.IQuestionService
	mapper            *mapper.SuggestionMapper
}

func NewSuggestionController(suggestionService service.ISuggestionService, questionService service.IQuestionService) ISuggestionController {
	return &suggestionController{
		suggestionService: suggestionService,
		questionService:   questionService,
		mapper:            mapper.NewSuggestionMapper(),
	}
}

func (c *suggestionController) RegisterRoutes(r fiber.Router, withConversation fiber.Handler) {
	h := r.Group("/whisper")
	h.Post("/suggestions", withConversation, c.GetSuggestion)
	h.Get("/suggestions", withConversation, c.RefreshSuggestion)
	h.Post("/suggestions/select", withConversation, c.SelectSuggestion)
	h.Post("/facets", withConversation, c.AddFilter)
	h.Delete("/facets/:id", withConversation, c.RemoveFilter)
	h.Delete("/facets", withConversation, c.RejectAllAnswers)
	h.Post("/questions/:id/reject", withConversation, c.RejectAnswer)
}

func (c *suggestionController) GetSuggestion(ctx *fiber.Ctx) error {
	var req dto.SuggestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	conv := serverutils.Conversation(ctx)
	message := entity.Message{
		ChatKey: conv.ChatKey,
		Query:   req.Query,
		Type:    entity.MessageType(req.Type),
	}

	if _, err := c.suggestionService.UpdateContextWithNewItem(ctx.UserContext(), conv, message); err != nil {
		return err
	}
	c.questionService.DetectQuestionAsked(ctx.UserContext(), conv, message)
	c.questionService.DetectAnswer(ctx.UserContext(), conv, message)

	suggestion, err := c.suggestionService.GetNewSuggestion(ctx.UserContext(), conv, entity.SuggestionQuery{
		MaxDocuments: *req.MaxDocuments,
		MaxQuestions: *req.MaxQuestions,
		Override:     c.mapper.ToRecommenderSettings(req.OverridenRecommenderSettings),
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get suggestion", c.mapper.ToSuggestionResponse(suggestion)))
}

func (c *suggestionController) RefreshSuggestion(ctx *fiber.Ctx) error {
	query := entity.SuggestionQuery{
		MaxDocuments: ctx.QueryInt("maxDocuments", defaultMaxDocuments),
		MaxQuestions: ctx.QueryInt("maxQuestions", defaultMaxQuestions),
	}
	if query.MaxDocuments < 0 || query.MaxQuestions < 0 {
		return &serverutils.ValidationError{Fields: map[string]string{"maxDocuments/maxQuestions": "must be at least 0"}}
	}

	suggestion := c.suggestionService.GetLastSuggestion(ctx.UserContext(), serverutils.Conversation(ctx), query)
	return ctx.JSON(serverutils.SuccessResponse("Success get last suggestion", c.mapper.ToSuggestionResponse(suggestion)))
}

func (c *suggestionController) SelectSuggestion(ctx *fiber.Ctx) error {
	var req dto.SelectSuggestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	id, _ := uuid.Parse(req.Id)
	if err := c.suggestionService.UpdateContextWithSelectedSuggestion(ctx.UserContext(), serverutils.Conversation(ctx), id); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *suggestionController) AddFilter(ctx *fiber.Ctx) error {
	var req dto.AddFilterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	facet := c.questionService.AddFilter(ctx.UserContext(), serverutils.Conversation(ctx), entity.NewFacet(req.Name, req.Values...))
	return ctx.JSON(serverutils.SuccessResponse("Success add filter", c.mapper.ToFacetDTO(facet)))
}

func (c *suggestionController) RemoveFilter(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return &serverutils.ValidationError{Fields: map[string]string{"id": "must be a UUID"}}
	}

	conv := serverutils.Conversation(ctx)
	if err := c.questionService.RemoveFilter(ctx.UserContext(), conv, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success remove filter", c.mapper.ToFacetDTOs(conv.MustHaveFacets)))
}

func (c *suggestionController) RejectAllAnswers(ctx *fiber.Ctx) error {
	c.questionService.RejectAllAnswers(ctx.UserContext(), serverutils.Conversation(ctx))
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *suggestionController) RejectAnswer(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return &serverutils.ValidationError{Fields: map[string]string{"id": "must be a UUID"}}
	}

	if err := c.questionService.RejectAnswer(ctx.UserContext(), serverutils.Conversation(ctx), id); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
