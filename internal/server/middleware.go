package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	obscontext "github.com/smallbiznis/meritscore/internal/observability/context"
)

const HeaderActor = "X-Actor-Id"

// ActorContext attributes audit entries to the calling user when the
// upstream gateway forwards one.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader(HeaderActor)); actor != "" {
			ctx := obscontext.WithActor(c.Request.Context(), auditdomain.ActorUser, actor)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
