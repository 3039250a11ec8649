// Package handlers holds the HTTP boundary adapters. respond.go is the
// single place where errors become status codes; no other file decides
// a status for a failure.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
)

// genericMessage is what callers see for anything the taxonomy does not
// recognize. The original error is logged server-side only.
const genericMessage = "an internal error occurred"

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError translates any error surfacing from the service layer
// (or raised by the transport itself) into a response:
//
//  1. a recognized taxonomy error gets its kind's default status and
//     its public message, diagnostics stripped;
//  2. anything else gets a 500 with a fixed generic message and is
//     logged with full detail.
//
// Structural binding failures never reach here; handlers convert them
// to interface-validation errors first, so arm 1 covers them too.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	if e, ok := apperrors.AsError(err); ok {
		if e.Layer == apperrors.LayerInfrastructure {
			log.Error("request failed on infrastructure",
				"op", e.Op, "error", e.Error(), "path", c.FullPath())
		}
		c.JSON(e.HTTPStatus(), ErrorEnvelope{
			Error: APIError{Message: e.PublicMessage(), Code: string(e.Kind)},
		})
		return
	}

	log.Error("unexpected error at boundary", "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Error: APIError{Message: genericMessage},
	})
}

// BindJSON decodes the request body and converts structural failures
// into interface-validation errors carrying the first issue's message.
func BindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return apperrors.NewInterfaceValidation("body", firstBindingIssue(err))
	}
	return nil
}

// firstBindingIssue pulls the first field error out of a validator
// error list; other decode failures pass through as-is.
func firstBindingIssue(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid field " + fe.Field() + ": failed " + fe.Tag() + " validation"
	}
	return err.Error()
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
