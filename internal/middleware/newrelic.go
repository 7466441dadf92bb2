package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes annotates the nrgin transaction with the authenticated
// caller and reports errors recorded on the context. It must run after
// nrgin.Middleware; without a transaction it does nothing.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}

		if caller, ok := CallerFrom(c); ok {
			txn.AddAttribute("user.id", caller.UserID)
			txn.AddAttribute("user.role", string(caller.Role))
		}

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
