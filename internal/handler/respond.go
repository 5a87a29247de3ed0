package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/order"
)

var (
	errInvalidBody = apperr.Validation("invalid request body")
	errInvalidID   = apperr.Validation("invalid id")
	errInvalidDate = apperr.Validation("invalid date, expected YYYY-MM-DD or RFC 3339")
)

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidState, apperr.KindInsufficientStock:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response for err. Internal errors are logged and
// answered with a generic message.
func fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusOf(kind)
	if kind == apperr.KindInternal {
		zctx.From(c.Request.Context()).Error("Request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
	}

	body := gin.H{"success": false}
	var purchase *order.PurchaseFailedError
	if errors.As(err, &purchase) {
		body["message"] = "purchase failed"
		body["error"] = purchase.Reason()
	} else {
		body["message"] = apperr.Message(err, "internal server error")
	}
	c.AbortWithStatusJSON(status, body)
}

// ok writes a success envelope with the given fields.
func ok(c *gin.Context, status int, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, errInvalidBody)
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, errInvalidID)
		return 0, false
	}
	return id, true
}

func dateString(t time.Time) string {
	return t.Format(time.DateOnly)
}

func optDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := dateString(*t)
	return &s
}
