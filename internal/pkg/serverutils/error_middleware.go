package serverutils

import (
	"errors"

	"agent-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into BaseResponse
// bodies with a matching status code.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusCode(err)
		body := ErrorResponse(code, err.Error())

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			body.Data = validationErr.Fields
		}

		return ctx.Status(code).JSON(body)
	}
}

func StatusCode(err error) int {
	var (
		validationErr  *ValidationError
		recommenderErr *service.RecommenderError
		analysisErr    *service.AnalysisError
		fiberErr       *fiber.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrSuggestionNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrFacetNotFound):
		return fiber.StatusNotFound
	case errors.As(err, &recommenderErr), errors.As(err, &analysisErr):
		return fiber.StatusBadGateway
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}
