package ports

// TokenIssuerPort mints short-lived bearer tokens for API requests.
// Tokens are cheap to sign, so a fresh one is issued per request rather
// than cached.
type TokenIssuerPort interface {
	Issue() (string, error)
}
