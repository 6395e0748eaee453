package auth

import (
	"github.com/gin-gonic/gin"

	"pustaka-backend/internal/platform/httpx"
)

// CapabilityTable maps "METHOD /route/path" (gin's FullPath form, with
// :params) to the role allowed to call it. Routes not listed are open to
// any authenticated user. One table for the whole API keeps the role
// checks out of the individual handlers.
type CapabilityTable map[string]string

// Gate checks the table once per request, after RequireAuth has run.
func Gate(table CapabilityTable) gin.HandlerFunc {
	return func(c *gin.Context) {
		required, listed := table[c.Request.Method+" "+c.FullPath()]
		if !listed {
			c.Next()
			return
		}
		if Role(c) != required {
			httpx.FailWith(c, httpx.CodeForbidden, "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}
