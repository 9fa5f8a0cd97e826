package jwt

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

// Claims is the verified content of an access token.
type Claims struct {
	UserID     string
	Role       user.Role
	EmployeeID *string
}

type Service interface {
	GenerateAccessToken(userID string, employeeID *string, role user.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService signs HS256 tokens with secretKey. accessTokenExpirationTime
// is a time.ParseDuration string such as "15m".
func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expDuration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenExpirationTime: expDuration,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(userID string, employeeID *string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	}
	if employeeID != nil {
		claims["employee_id"] = *employeeID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ParseClaims reads the access claims out of a decoded claim map. ok is
// false when the map is not an access token or misses a required claim.
func ParseClaims(claims map[string]interface{}) (c Claims, ok bool) {
	tokenType, _ := claims["type"].(string)
	if tokenType != TokenTypeAccess {
		return Claims{}, false
	}

	c.UserID, _ = claims["user_id"].(string)
	role, _ := claims["role"].(string)
	c.Role = user.Role(role)
	if c.UserID == "" || !c.Role.IsValid() {
		return Claims{}, false
	}

	if employeeID, _ := claims["employee_id"].(string); employeeID != "" {
		c.EmployeeID = &employeeID
	}
	return c, true
}
