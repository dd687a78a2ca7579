package tokengenerator

import (
	"net/http"
	"time"
)

// TokenValue holds a signed token and its expiry
type TokenValue struct {
	Token  string
	Expiry time.Time
}

// JwtService provides JWT token generation and cookie management
type JwtService struct {
	generator TokenGenerator

	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	CookieHttpOnly     bool
	CookieSecure       bool
}

// JwtServiceOption is a function that configures a JwtService
type JwtServiceOption func(*JwtService)

// WithAccessTokenExpiry sets the access token expiry duration
func WithAccessTokenExpiry(expiry time.Duration) JwtServiceOption {
	return func(js *JwtService) {
		js.AccessTokenExpiry = expiry
	}
}

// WithRefreshTokenExpiry sets the refresh token expiry duration
func WithRefreshTokenExpiry(expiry time.Duration) JwtServiceOption {
	return func(js *JwtService) {
		js.RefreshTokenExpiry = expiry
	}
}

// WithCookieHttpOnly sets the HttpOnly flag on token cookies
func WithCookieHttpOnly(httpOnly bool) JwtServiceOption {
	return func(js *JwtService) {
		js.CookieHttpOnly = httpOnly
	}
}

// WithCookieSecure sets the Secure flag on token cookies
func WithCookieSecure(secure bool) JwtServiceOption {
	return func(js *JwtService) {
		js.CookieSecure = secure
	}
}

// NewJwtService creates a new JwtService
func NewJwtService(generator TokenGenerator, options ...JwtServiceOption) *JwtService {
	js := &JwtService{
		generator:          generator,
		AccessTokenExpiry:  DefaultAccessTokenExpiry,
		RefreshTokenExpiry: DefaultRefreshTokenExpiry,
		CookieHttpOnly:     true,
		CookieSecure:       false,
	}
	for _, option := range options {
		option(js)
	}
	return js
}

// CreateAccessToken creates an access token for the subject
func (js *JwtService) CreateAccessToken(subject string, extraClaims map[string]interface{}) (TokenValue, error) {
	token, expiry, err := js.generator.GenerateToken(subject, js.AccessTokenExpiry, extraClaims)
	if err != nil {
		return TokenValue{}, err
	}
	return TokenValue{Token: token, Expiry: expiry}, nil
}

// CreateRefreshToken creates a refresh token for the subject
func (js *JwtService) CreateRefreshToken(subject string, extraClaims map[string]interface{}) (TokenValue, error) {
	token, expiry, err := js.generator.GenerateToken(subject, js.RefreshTokenExpiry, extraClaims)
	if err != nil {
		return TokenValue{}, err
	}
	return TokenValue{Token: token, Expiry: expiry}, nil
}

// SetTokenCookie writes a token cookie on the response
func (js *JwtService) SetTokenCookie(w http.ResponseWriter, tokenName, tokenValue string, expire time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenName,
		Path:     "/",
		Value:    tokenValue,
		Expires:  expire,
		HttpOnly: js.CookieHttpOnly,
		Secure:   js.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie expires a token cookie on the response
func (js *JwtService) ClearTokenCookie(w http.ResponseWriter, tokenName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenName,
		Path:     "/",
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: js.CookieHttpOnly,
		Secure:   js.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
