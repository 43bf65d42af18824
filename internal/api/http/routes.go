package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/skysnap/skysnap/internal/geocode"
	"github.com/skysnap/skysnap/internal/pipeline"
	"github.com/skysnap/skysnap/internal/user"
	"github.com/skysnap/skysnap/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. The HTTP layer is
// a thin collaborator: it hands user records to the pipeline and renders back
// displayable results or notification outcomes.
func RegisterRoutes(app *fiber.App, directory user.Directory, service *pipeline.Service) {
	v1 := app.Group("/api/v1")

	v1.Post("/users", func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		u, err := directory.Create(c.Context(), req.Name, req.Email, req.Location)
		if err != nil {
			return mapDirectoryError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	})

	v1.Get("/users", func(c *fiber.Ctx) error {
		email := c.Query("email")
		if email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email query parameter is required")
		}

		u, err := directory.FindByEmail(c.Context(), email)
		if err != nil {
			return mapDirectoryError(err)
		}
		return c.JSON(u)
	})

	v1.Put("/users/:id/location", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}

		var req updateLocationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		u, err := directory.UpdateLocation(c.Context(), uint(id), req.Location)
		if err != nil {
			return mapDirectoryError(err)
		}
		return c.JSON(u)
	})

	// Interactive pipeline run: resolve, fetch, evaluate, and (with
	// notify=true) dispatch the tip to the user's email.
	v1.Get("/weather/check", func(c *fiber.Ctx) error {
		email := c.Query("email")
		if email == "" {
			return fiber.NewError(fiber.StatusBadRequest, "email query parameter is required")
		}
		notify := c.QueryBool("notify")

		u, err := directory.FindByEmail(c.Context(), email)
		if err != nil {
			return mapDirectoryError(err)
		}

		result, err := service.RunInteractive(c.Context(), u, notify)
		if err != nil {
			return mapPipelineError(err)
		}
		return c.JSON(result)
	})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Location string `json:"location" validate:"required"`
}

type updateLocationRequest struct {
	Location string `json:"location" validate:"required"`
}

func mapDirectoryError(err error) error {
	switch {
	case errors.Is(err, user.ErrDuplicateEmail):
		return fiber.NewError(fiber.StatusConflict, "this email is already registered")
	case errors.Is(err, user.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no user found with this email")
	case errors.Is(err, user.ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "directory operation failed")
	}
}

func mapPipelineError(err error) error {
	switch {
	case errors.Is(err, geocode.ErrResolution):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "could not resolve location")
	case errors.Is(err, weather.ErrFetch):
		return fiber.NewError(fiber.StatusBadGateway, "could not fetch weather data")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "pipeline run failed")
	}
}
