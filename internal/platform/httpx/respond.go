package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

type errorDTO struct {
	Error APIError `json:"error"`
}

// Data writes the `{"data": ...}` envelope every resource endpoint uses.
func Data(c *gin.Context, status int, v any) {
	c.JSON(status, gin.H{"data": v})
}

// Fail writes the `{"error":{code,message}}` envelope.
func Fail(c *gin.Context, err error) {
	c.JSON(ToHTTPStatus(err), errFrom(err))
}

// FailWith writes an explicit code/message without a wrapped error.
func FailWith(c *gin.Context, code Code, msg string) {
	failErr := &APIError{Code: code, Message: msg}
	c.JSON(ToHTTPStatus(failErr), errorDTO{Error: *failErr})
}

func errFrom(err error) errorDTO {
	if api, ok := err.(*APIError); ok {
		return errorDTO{Error: *api}
	}
	return errorDTO{Error: APIError{Code: CodeInternal, Message: err.Error()}}
}

// ParseIntDefault is shared by handlers reading limit/offset style queries.
func ParseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
