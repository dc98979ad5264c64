package setting

import (
	"net/http"
	"time"

	"github.com/campusbook/booking-backend/internal/pkg/apperror"
)

var ErrNotFound = apperror.New(http.StatusNotFound, "setting not found")

// Value types a setting row may declare.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Setting is a runtime-tunable key/value pair.
type Setting struct {
	ID          int64
	Key         string
	Value       string
	ValueType   string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
