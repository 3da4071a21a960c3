package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/arifsuz/pre-shipment-system/internal/config"
	"github.com/arifsuz/pre-shipment-system/internal/pse/service"
	"github.com/arifsuz/pre-shipment-system/internal/pse/sse"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func init() {
	// Report binding errors with wire names instead of Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// Handlers groups the HTTP handlers.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Company      *CompanyHandler
	Shipment     *ShipmentHandler
	Memo         *MemoHandler
	Upload       *UploadHandler
	Notification *NotificationHandler
	Stats        *StatsHandler
	SSE          *SSEHandler
}

// NewHandlers builds all handlers over the services.
func NewHandlers(svc *service.Services, hub *sse.Hub, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Company:      NewCompanyHandler(svc.Company),
		Shipment:     NewShipmentHandler(svc.Shipment),
		Memo:         NewMemoHandler(svc.Memo, svc.Workflow),
		Upload:       NewUploadHandler(svc.Import, cfg.Upload.MaxSize),
		Notification: NewNotificationHandler(svc.Notification),
		Stats:        NewStatsHandler(svc.Stats),
		SSE:          NewSSEHandler(hub, logger),
	}
}

// Response is the envelope of every JSON response.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes a page of a list.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessMessage responds 200 with a message and optional data.
func SuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func SuccessList(c *gin.Context, data interface{}, p *Pagination) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: p})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Error responds with success=false.
func Error(c *gin.Context, status int, message string, errs ...string) {
	c.JSON(status, Response{Success: false, Message: message, Errors: errs})
}

func BadRequest(c *gin.Context, message string, errs ...string) {
	Error(c, http.StatusBadRequest, message, errs...)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError hides the message in release mode.
func InternalError(c *gin.Context, message string) {
	if gin.Mode() == gin.ReleaseMode {
		message = "Internal server error"
	}
	Error(c, http.StatusInternalServerError, message)
}

// RespondError maps a service error to its status code.
func RespondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		BadRequest(c, verr.Message, verr.Fields...)
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		Unauthorized(c, err.Error())
	default:
		c.Error(err)
		InternalError(c, err.Error())
	}
}

// bindJSON binds the body and answers 400 on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		BadRequest(c, "Validation failed", bindingErrors(err)...)
		return false
	}
	return true
}

func bindingErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid request body: " + err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			out = append(out, field+" is required")
		case "min":
			if fe.Kind() == reflect.Slice {
				out = append(out, fmt.Sprintf("%s must contain at least %s entries", field, fe.Param()))
			} else {
				out = append(out, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
			}
		case "email":
			out = append(out, field+" must be a valid email")
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of %s", field, fe.Param()))
		default:
			out = append(out, field+" is invalid")
		}
	}
	return out
}

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// GetPagination reads page and limit (default 10, at most 100).
func GetPagination(c *gin.Context) (page, limit int) {
	page = 1
	limit = 10

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}
