package adapters

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/golang-jwt/jwt/v5"

	"appstore-submit/internal/ports"
)

const (
	tokenAudience = "appstoreconnect-v1"
	// The platform rejects tokens valid for more than 20 minutes.
	tokenLifetime = 19 * time.Minute
)

// TokenIssuerAdapter signs ES256 bearer tokens for the App Store
// Connect API. The private key is read and parsed once at construction;
// a bad key fails immediately since it will not become valid by
// retrying.
type TokenIssuerAdapter struct {
	KeyID    string
	IssuerID string
	Clock    func() time.Time

	key *ecdsa.PrivateKey
}

func NewTokenIssuerAdapter(keyID string, issuerID string, keyPath string) (*TokenIssuerAdapter, error) {
	if strings.TrimSpace(keyID) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("api key id is empty: set APP_STORE_API_KEY_ID")
	}
	if strings.TrimSpace(issuerID) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("issuer id is empty: set APP_STORE_ISSUER_ID")
	}
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("p8 key file not readable: set APP_STORE_P8_KEY_PATH or place the key at the default location").
			WithCause(err)
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("p8 key file is not a valid EC private key").
			WithCause(err)
	}
	return &TokenIssuerAdapter{
		KeyID:    strings.TrimSpace(keyID),
		IssuerID: strings.TrimSpace(issuerID),
		Clock:    time.Now,
		key:      key,
	}, nil
}

func (a *TokenIssuerAdapter) Issue() (string, error) {
	now := a.Clock()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": a.IssuerID,
		"iat": now.Unix(),
		"exp": now.Add(tokenLifetime).Unix(),
		"aud": tokenAudience,
	})
	token.Header["kid"] = a.KeyID
	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to sign bearer token").
			WithCause(err)
	}
	return signed, nil
}

// DefaultKeyPath is where Apple's tooling drops downloaded keys.
func DefaultKeyPath(keyID string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".appstoreconnect", "private_keys", fmt.Sprintf("AuthKey_%s.p8", keyID))
}

var _ ports.TokenIssuerPort = (*TokenIssuerAdapter)(nil)
