package controller

import (
	"agent-assist-be/internal/dto"
	"agent-assist-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IVersionController interface {
	RegisterRoutes(r fiber.Router)
	GetVersion(ctx *fiber.Ctx) error
}

type versionController struct {
	name    string
	version string
}

func NewVersionController(name, version string) IVersionController {
	return &versionController{name: name, version: version}
}

func (c *versionController) RegisterRoutes(r fiber.Router) {
	r.Get("/whisper/version", c.GetVersion)
}

func (c *versionController) GetVersion(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get version", dto.VersionResponse{
		Name:    c.name,
		Version: c.version,
	}))
}
