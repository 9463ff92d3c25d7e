package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"mattress_money/internal/errs" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respond terminates the request with the standard `{response: code, ...}`
// JSON body. Every handler path ends the response exactly once, through here.
func respond(c *gin.Context, status int, code Code, extra gin.H) {
	body := gin.H{"response": code}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// respondError maps the domain error taxonomy onto the response-code table.
// Partial ledger failures are logged loudly and surfaced as database errors;
// the skew is never silently hidden.
func respondError(c *gin.Context, err error) {
	var partial *errs.PartialFailureError
	if errors.As(err, &partial) {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": partial.Error(),
		}).Error("Partial ledger failure, balances may be skewed")
		respond(c, http.StatusInternalServerError, CodeDatabaseError, nil)
		return
	}

	switch {
	case errors.Is(err, errs.ErrInvalidFormData):
		respond(c, http.StatusBadRequest, CodeInvalidFormData, nil)
	case errors.Is(err, errs.ErrMissingData):
		respond(c, http.StatusBadRequest, CodeMissingData, nil)
	case errors.Is(err, errs.ErrItemExists):
		respond(c, http.StatusBadRequest, CodeItemExists, nil)
	case errors.Is(err, errs.ErrBudgetDoesNotExist):
		respond(c, http.StatusBadRequest, CodeBudgetDoesNotExist, nil)
	default:
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed with database error")
		respond(c, http.StatusBadGateway, CodeDatabaseError, nil)
	}
}

// WrongMethodHandler answers a request that used the wrong verb for its
// action, naming the verb it should have used
func WrongMethodHandler(code Code) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, http.StatusMethodNotAllowed, code, nil)
	}
}

// BadAPICommandHandler answers any unrouted /api path
func BadAPICommandHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		respond(c, http.StatusBadRequest, CodeBadAPICommand, nil)
	}
}
