package middleware

import (
	"strings"

	"lms_backend/internal/config"
	"lms_backend/internal/identity"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Query("token")
}

// AuthMiddleware 校验 JWT，只确认身份，角色由 ResolveRole 从存储读取
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil || claims.UserID == 0 {
			logger.Log.Debug("JWT解析失败", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// ResolveRole 每个请求查询一次当前角色；用户被删除或禁用时返回 401
func ResolveRole(oracle identity.RoleOracle) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		role, err := oracle.Role(c.Request.Context(), p)
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		c.Set(util.ContextRoleKey, role)
		c.Request = c.Request.WithContext(identity.WithResolvedRole(c.Request.Context(), p, role))
		c.Next()
	}
}

// RoleMiddleware 管理员通过所有角色校验
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFrom(c)
		if !ok {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := role == model.Admin
		for _, r := range roles {
			if role == r {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFrom 未认证时返回匿名 Principal
func PrincipalFrom(c *gin.Context) identity.Principal {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return identity.Principal{}
	}
	return identity.Principal{UserID: claims.UserID}
}

func RoleFrom(c *gin.Context) (model.UserRole, bool) {
	v, exists := c.Get(util.ContextRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(model.UserRole)
	return role, ok
}
