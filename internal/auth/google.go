package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// GoogleClaims is the subset of a Google ID token the service cares about.
type GoogleClaims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleVerifier validates a third-party identity token out-of-band.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleClaims, error)
}

type googleJWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type googleJWKS struct {
	Keys []googleJWK `json:"keys"`
}

// GoogleOIDC verifies Google ID tokens against the published JWKS.
type GoogleOIDC struct {
	clientID string
	http     *http.Client

	mu     sync.RWMutex
	jwks   *googleJWKS
	jwksAt time.Time
}

// NewGoogleOIDC constructs a verifier bound to one OAuth client ID.
func NewGoogleOIDC(clientID string) *GoogleOIDC {
	return &GoogleOIDC{
		clientID: clientID,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GoogleOIDC) fetchJWKS(ctx context.Context) (*googleJWKS, error) {
	g.mu.RLock()
	cached := g.jwks
	fresh := time.Since(g.jwksAt) < time.Hour
	g.mu.RUnlock()
	if cached != nil && fresh {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleJWKSURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("auth: google jwks http %d", resp.StatusCode)
	}
	var jwks googleJWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.jwks = &jwks
	g.jwksAt = time.Now()
	g.mu.Unlock()
	return &jwks, nil
}

func (g *GoogleOIDC) rsaKeyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	jwks, err := g.fetchJWKS(ctx)
	if err != nil {
		return nil, err
	}
	for _, key := range jwks.Keys {
		if key.Kid != kid || !strings.EqualFold(key.Kty, "RSA") {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(key.N)
		if err != nil {
			return nil, err
		}
		eb, err := base64.RawURLEncoding.DecodeString(key.E)
		if err != nil {
			return nil, err
		}
		e := 0
		for _, b := range eb {
			e = (e << 8) | int(b)
		}
		if e == 0 {
			e = 65537
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
	}
	return nil, errors.New("auth: google jwks kid not found")
}

// Verify checks signature, issuer, audience and expiry of a Google ID token.
func (g *GoogleOIDC) Verify(ctx context.Context, idToken string) (*GoogleClaims, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return nil, errors.New("auth: bad id_token format")
	}
	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, err
	}
	var header struct {
		Alg string `json:"alg"`
		Kid string `json:"kid"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, err
	}
	if header.Alg != "RS256" {
		return nil, fmt.Errorf("auth: unexpected id_token alg %s", header.Alg)
	}

	key, err := g.rsaKeyForKid(ctx, header.Kid)
	if err != nil {
		return nil, err
	}
	tok, err := jwt.Parse(idToken, func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !tok.Valid {
		return nil, errors.New("auth: invalid id_token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("auth: id_token claims type")
	}

	iss, _ := claims["iss"].(string)
	if iss != "https://accounts.google.com" && iss != "accounts.google.com" {
		return nil, fmt.Errorf("auth: bad id_token iss %s", iss)
	}
	audOK := false
	switch aud := claims["aud"].(type) {
	case string:
		audOK = aud == g.clientID
	case []any:
		for _, v := range aud {
			if s, _ := v.(string); s == g.clientID {
				audOK = true
				break
			}
		}
	}
	if !audOK {
		return nil, errors.New("auth: bad id_token aud")
	}

	str := func(k string) string {
		s, _ := claims[k].(string)
		return s
	}
	verified, _ := claims["email_verified"].(bool)
	return &GoogleClaims{
		Subject:       str("sub"),
		Email:         str("email"),
		EmailVerified: verified,
		Name:          str("name"),
		Picture:       str("picture"),
	}, nil
}
