package handler

import (
	"io"

	"study-deck/internal/domain"
	"study-deck/internal/middleware"
	"study-deck/internal/util"

	"github.com/gofiber/fiber/v2"
)

// readUpload loads a multipart file field into memory.
func readUpload(c *fiber.Ctx, field string) (domain.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return domain.Upload{}, domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, domain.NewInternalError("Failed to open uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, domain.NewInternalError("Failed to read uploaded file", err)
	}
	return domain.Upload{FileName: fh.Filename, Data: data}, nil
}

// idParam reads a ULID route parameter.
func idParam(c *fiber.Ctx, name string) (string, error) {
	id := c.Params(name)
	if !util.IsULID(id) {
		return "", domain.ValidationErrors{domain.NewInvalidFormatError(name, id)}
	}
	return id, nil
}

func currentUser(c *fiber.Ctx) (string, error) {
	id := middleware.UserID(c)
	if id == "" {
		return "", domain.NewUnauthorizedError("Authentication required")
	}
	return id, nil
}
