package auth

import (
	"fmt"
	"strings"

	"khoomi-api-io/storefront/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const claimKey = "storefront.auth.claim"

const guestCookie = "____kh_guest"

// SetClaim records a verified claim on the request.
func SetClaim(c *gin.Context, claim JWTClaim) {
	c.Set(claimKey, claim)
}

// ClaimFrom returns the verified claim, if the request is signed in.
func ClaimFrom(c *gin.Context) (JWTClaim, bool) {
	v, ok := c.Get(claimKey)
	if !ok {
		return JWTClaim{}, false
	}
	claim, ok := v.(JWTClaim)
	return claim, ok
}

// IsAuthenticated is the signal the cart flow branches on.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := ClaimFrom(c)
	return ok
}

// Validate param userid again session userid.
func ValidateUserID(c *gin.Context) (primitive.ObjectID, error) {
	claim, ok := ClaimFrom(c)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unauthorized: request is not signed in")
	}

	userId := c.Param("userid")
	res, err := primitive.ObjectIDFromHex(userId)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if userId != claim.Id {
		return primitive.NilObjectID, fmt.Errorf("unauthorized: User ID in the URL path doesn't match with currently authenticated user")
	}
	return res, nil
}

// ExtractBearerToken extracts the Bearer token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is empty")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization header does not start with 'Bearer '")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}
	return token, nil
}

// GuestSession returns the guest session id carried by the request, from the
// header first and the cookie second.
func GuestSession(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetHeader(common.GUEST_SESSION_HEADER)); v != "" {
		return v
	}
	if v, err := c.Cookie(guestCookie); err == nil {
		return v
	}
	return ""
}

// EnsureGuestSession reuses the request's guest session or starts a new one,
// and mirrors it into a cookie.
func EnsureGuestSession(c *gin.Context) string {
	id := GuestSession(c)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	maxAge := int(common.PENDING_CART_TTL.Seconds())
	c.SetCookie(guestCookie, id, maxAge, "/", getDomainFromRequest(c), isHTTPS(c), true)
	c.Header(common.GUEST_SESSION_HEADER, id)
	return id
}

func getDomainFromRequest(ctx *gin.Context) string {
	host := ctx.Request.Host

	// Remove port
	if colonIndex := strings.LastIndex(host, ":"); colonIndex != -1 {
		host = host[:colonIndex]
	}

	if host == "localhost" || host == "127.0.0.1" {
		return "localhost"
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		return "." + strings.Join(parts[len(parts)-2:], ".")
	}
	return host
}

func isHTTPS(ctx *gin.Context) bool {
	if ctx.Request.TLS != nil {
		return true
	}
	if ctx.GetHeader("X-Forwarded-Proto") == "https" {
		return true
	}
	return ctx.GetHeader("X-Forwarded-Ssl") == "on"
}
