package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier 使用共享密钥校验 HS256 令牌，用于本地开发与测试
type HMACVerifier struct {
	secret []byte
	issuer string
}

type hmacClaims struct {
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}

func NewHMACVerifier(secret, issuer string) (*HMACVerifier, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("HMAC 密钥长度至少为 16 个字符")
	}
	return &HMACVerifier{secret: []byte(secret), issuer: issuer}, nil
}

func (v *HMACVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var hc hmacClaims
	_, err := jwt.ParseWithClaims(rawToken, &hc, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if hc.Subject == "" {
		return nil, fmt.Errorf("%w: 缺少 sub", ErrTokenInvalid)
	}
	return &Claims{
		Subject:   hc.Subject,
		Email:     hc.Email,
		Username:  hc.Username,
		FirstName: hc.FirstName,
		LastName:  hc.LastName,
		ImageURL:  hc.ImageURL,
	}, nil
}

// Issue 签发一个令牌，供开发环境与测试使用
func (v *HMACVerifier) Issue(c Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	hc := hmacClaims{
		Email:     c.Email,
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		ImageURL:  c.ImageURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, hc).SignedString(v.secret)
}
