package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supabase-community/auth-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashwath129/DayMap/internal/modules/serializer"
)

const (
	ctxUserIDKey   = "user_id"
	ctxUserNameKey = "user_name"
)

// UserAuth authenticates requests with a Supabase access token. The verified
// user ID lands in the gin context and on the current span for telemetry
// filtering.
func UserAuth(authClient auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		_, authSpan := otel.Tracer("middleware").Start(ctx, "user_auth",
			trace.WithAttributes(attribute.String("middleware", "user_auth")))

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		user, err := authClient.WithToken(token).GetUser()
		if err != nil {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.RecordError(err)
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", user.ID.String()))
		}
		authSpan.SetAttributes(
			attribute.String("user_id", user.ID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set(ctxUserIDKey, user.ID)
		c.Set(ctxUserNameKey, displayName(user.UserMetadata, user.Email))
		c.Next()
	}
}

func displayName(meta map[string]interface{}, email string) string {
	for _, key := range []string{"display_name", "full_name", "name"} {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	return email
}

// UserID returns the authenticated user's ID from the gin context.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxUserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// UserName returns the authenticated user's display name.
func UserName(c *gin.Context) string {
	if v, ok := c.Get(ctxUserNameKey); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}
