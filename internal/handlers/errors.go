package handlers

import (
	"context"
	"errors"
	"strconv"

	domainerrors "consortial/internal/errors"
	"consortial/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// handleError writes the response for a service error.
func handleError(c *fiber.Ctx, log *logrus.Logger, err error) error {
	var ve *domainerrors.ValidationError
	if errors.As(err, &ve) {
		return response.ValidationError(c, ve.Fields)
	}

	var de *domainerrors.DomainError
	if errors.As(err, &de) {
		switch de.Kind {
		case domainerrors.KindValidation:
			return response.CodedError(c, fiber.StatusUnprocessableEntity, de.Code, de.Error())
		case domainerrors.KindNotFound:
			return response.CodedError(c, fiber.StatusNotFound, de.Code, de.Error())
		case domainerrors.KindConflict:
			return response.CodedError(c, fiber.StatusConflict, de.Code, de.Error())
		case domainerrors.KindConfiguration:
			log.WithFields(logrus.Fields{"code": de.Code, "path": c.Path()}).WithError(err).Error("fee engine misconfigured")
			return response.CodedError(c, fiber.StatusInternalServerError, de.Code, de.Error())
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return response.Error(c, fiber.StatusServiceUnavailable, "request cancelled")
	}

	log.WithField("path", c.Path()).WithError(err).Error("request failed")
	return response.ServerError(c, "internal server error")
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domainerrors.NewValidationError(map[string]string{"id": "must be a positive integer"})
	}
	return uint(id), nil
}

func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return domainerrors.NewValidationError(map[string]string{"body": "invalid request format"})
	}
	return nil
}
