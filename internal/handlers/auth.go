package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/course-service/internal/config"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const userKey = "user"

// TokenVerifier turns a bearer token into a verified identity.
type TokenVerifier interface {
	Verify(token string) (*services.Identity, error)
}

// CasdoorVerifier checks casdoor-issued JWTs against the application certificate.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg config.CasdoorConfig) *CasdoorVerifier {
	return &CasdoorVerifier{
		client: casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.OrganizationName, cfg.ApplicationName),
	}
}

func (v *CasdoorVerifier) Verify(token string) (*services.Identity, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, err
	}

	userID := claims.Id
	if userID == "" {
		userID = claims.Owner + "/" + claims.Name
	}
	fullName := claims.DisplayName
	if fullName == "" {
		fullName = claims.Name
	}
	return &services.Identity{
		UserID:   userID,
		FullName: fullName,
		Email:    claims.Email,
		IsAdmin:  claims.IsAdmin,
	}, nil
}

// AuthMiddleware authenticates the bearer token, syncs the caller into the
// local user table and exposes the user id to handlers.
func AuthMiddleware(verifier TokenVerifier, users services.UserService, logger utils.Logger) gin.HandlerFunc {
	base := NewBaseHandler(logger)

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
				Code:    CodeUnauthorized,
			})
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
					Message: "Session expired",
					Code:    CodeSessionExpired,
				})
				return
			}
			base.LogRequest(c, "Rejected bearer token", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Code:    CodeUnauthorized,
			})
			return
		}

		user, err := users.Sync(c.Request.Context(), identity)
		if err != nil {
			base.handleServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
