package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/wyfcoding/vendersphere/pkg/logger"
)

// SubjectEmailKey gin context key，存放已验证的用户邮箱
const SubjectEmailKey = "subject_email"

// SubjectRoleKey gin context key，存放已验证的用户角色
const SubjectRoleKey = "subject_role"

// Claims JWT 载荷，外部身份提供方签发
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuthMiddleware 校验 Bearer token，并把已验证的身份写入 context。
// 只做验证，签发由外部身份提供方负责。
func JWTAuthMiddleware(secret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
		if issuer != "" {
			opts = append(opts, jwt.WithIssuer(issuer))
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, opts...)
		if err != nil || !token.Valid || claims.Email == "" {
			logger.Warn(c.Request.Context(), "Token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role := claims.Role
		if role == "" {
			role = "customer"
		}
		c.Set(SubjectEmailKey, claims.Email)
		c.Set(SubjectRoleKey, role)
		c.Next()
	}
}

// RequireRole 要求已验证的身份具备指定角色之一
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := SubjectRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// SubjectEmail 获取 context 中已验证的用户邮箱
func SubjectEmail(c *gin.Context) string {
	if v, ok := c.Get(SubjectEmailKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SubjectRole 获取 context 中已验证的用户角色
func SubjectRole(c *gin.Context) string {
	if v, ok := c.Get(SubjectRoleKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
