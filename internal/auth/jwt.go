// Package auth is the authentication boundary. The storefront only needs to
// know whether a request is signed in and for which user.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const AccessTokenExpirationTime = time.Minute * 15

const blacklistPrefix = "storefront:revoked:"

type JWTClaim struct {
	Id        string `json:"id"`
	LoginName string `json:"login_name"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Get user object ID from JWTClaim.
func (j JWTClaim) GetUserObjectId() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(j.Id)
}

// Authenticator verifies access tokens issued by the account service.
type Authenticator struct {
	secret    []byte
	blacklist *redis.Client
	now       func() time.Time
}

// NewAuthenticator verifies tokens signed with secret. blacklist may be nil,
// in which case revocation is not checked.
func NewAuthenticator(secret string, blacklist *redis.Client) *Authenticator {
	return &Authenticator{secret: []byte(secret), blacklist: blacklist, now: time.Now}
}

// GenerateJWT signs an access token for id.
func (a *Authenticator) GenerateJWT(id, email, loginName string) (string, int64, error) {
	expirationTime := a.now().Add(AccessTokenExpirationTime)

	claims := JWTClaim{
		Id:        id,
		LoginName: loginName,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(a.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", 0, err
	}
	return tokenString, expirationTime.Unix(), nil
}

// Validate a signed jwt auth token and it's expiration time.
func (a *Authenticator) ValidateToken(ctx context.Context, signedToken string) (JWTClaim, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&JWTClaim{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		},
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return JWTClaim{}, err
	}

	claim, ok := token.Claims.(*JWTClaim)
	if !ok {
		return JWTClaim{}, errors.New("couldn't parse claims")
	}
	if !a.IsTokenValid(ctx, signedToken) {
		return JWTClaim{}, errors.New("token has been revoked, please login again")
	}
	return *claim, nil
}

// InvalidateToken revokes tokenString until it would have expired anyway.
func (a *Authenticator) InvalidateToken(ctx context.Context, tokenString string) error {
	if a.blacklist == nil {
		return nil
	}
	return a.blacklist.Set(ctx, blacklistPrefix+tokenString, true, AccessTokenExpirationTime).Err()
}

// Check if token is in the blacklist
func (a *Authenticator) IsTokenValid(ctx context.Context, tokenString string) bool {
	if a.blacklist == nil {
		return true
	}
	err := a.blacklist.Get(ctx, blacklistPrefix+tokenString).Err()
	return errors.Is(err, redis.Nil)
}
