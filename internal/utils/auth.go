package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"citizens-connect/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
	ctxName   = "name"
)

type AuthResponse struct {
	UserID    string `json:"user_id"`
	UserIDAlt string `json:"userId"`
	Role      string `json:"role"`
	Name      string `json:"name"`
}

func (r AuthResponse) identity() models.Identity {
	id := r.UserID
	if id == "" {
		id = r.UserIDAlt
	}
	return models.Identity{UserID: id, Role: r.Role, Name: r.Name}
}

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// JWTVerifier checks HS256 tokens issued by the auth service.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (j *JWTVerifier) Verify(tokenString string) (models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	})
	if err != nil {
		return models.Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Identity{}, errors.New("invalid token claims")
	}
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return models.Identity{UserID: str("user_id"), Role: str("role"), Name: str("name")}, nil
}

// RemoteVerifier asks the auth service to validate the token.
type RemoteVerifier struct {
	baseURL    string
	httpClient *http.Client
}

func NewRemoteVerifier(baseURL string) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (v *RemoteVerifier) Verify(token string) (models.Identity, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/validate", v.baseURL), nil)
	if err != nil {
		return models.Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return models.Identity{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Identity{}, fmt.Errorf("auth service returned status: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return models.Identity{}, err
	}
	return authResp.identity(), nil
}

// AuthMiddleware validates the bearer token and puts userID, role and name into the context.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		identity, err := verifier.Verify(strings.TrimSpace(parts[1]))
		if err != nil || !identity.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		SetIdentity(c, identity)
		c.Next()
	}
}

func IdentityFromContext(c *gin.Context) models.Identity {
	return models.Identity{
		UserID: c.GetString(ctxUserID),
		Role:   c.GetString(ctxRole),
		Name:   c.GetString(ctxName),
	}
}

func SetIdentity(c *gin.Context, identity models.Identity) {
	c.Set(ctxUserID, identity.UserID)
	c.Set(ctxRole, identity.Role)
	c.Set(ctxName, identity.Name)
}
