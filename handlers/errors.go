package handlers

import (
	"errors"
	"net/http"

	"appointly/services/booking"
	"appointly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var kindStatus = map[booking.ErrorKind]int{
	booking.KindNotFound:               http.StatusNotFound,
	booking.KindValidation:             http.StatusBadRequest,
	booking.KindConflict:               http.StatusConflict,
	booking.KindInvalidStateTransition: http.StatusUnprocessableEntity,
}

// respondError writes a domain error with its mapped status. Anything that is
// not a BookingError is logged and reported as a 500 without internals.
func respondError(c *gin.Context, action string, err error) {
	var be *booking.BookingError
	if errors.As(err, &be) {
		status, ok := kindStatus[be.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		getLogger(c).Info(action, zap.String("kind", string(be.Kind)), zap.String("message", be.Message))
		utils.JSONError(c, status, string(be.Kind), be.Message, "")
		return
	}
	getLogger(c).Error(action, zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "internal", "Internal Server Error", "")
}

func badRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	utils.JSONError(c, http.StatusBadRequest, string(booking.KindValidation), message, details)
}
