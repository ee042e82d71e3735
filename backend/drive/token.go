package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/74Thirsty/cloudchain/backend"
)

// expirySkew keeps a token from being used right at its deadline.
const expirySkew = 30 * time.Second

// Token is the per-account credential record kept in the workspace.
type Token struct {
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	TokenURI     string    `toml:"token_uri,omitempty"`
	Expiry       time.Time `toml:"expiry,omitempty"`
}

func (t Token) valid() bool {
	if t.AccessToken == "" {
		return false
	}
	return t.Expiry.IsZero() || time.Now().Add(expirySkew).Before(t.Expiry)
}

// TokenProvider implements the credential capability from the workspace
// token files: it returns the stored access token while it is fresh and
// refreshes it through the OAuth token endpoint when it is not. Interactive
// first-time sign-in is out of scope; a missing token file tells the
// operator to provision one.
type TokenProvider struct {
	ws         backend.Workspace
	httpClient *http.Client
}

func NewTokenProvider(ws backend.Workspace, httpClient *http.Client) *TokenProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenProvider{ws: ws, httpClient: httpClient}
}

func (p *TokenProvider) Token(ctx context.Context, account string) (string, error) {
	path := p.ws.TokenPath(account)
	var tok Token
	if _, err := toml.DecodeFile(path, &tok); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no token for %s: sign in and place the token at %s", account, path)
		}
		return "", fmt.Errorf("read token for %s: %w", account, err)
	}
	if tok.valid() {
		return tok.AccessToken, nil
	}
	if tok.RefreshToken == "" {
		return "", fmt.Errorf("token for %s expired and no refresh token is stored", account)
	}
	refreshed, err := p.refresh(ctx, tok)
	if err != nil {
		return "", fmt.Errorf("refresh token for %s: %w", account, err)
	}
	if err := SaveToken(path, refreshed); err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

func (p *TokenProvider) refresh(ctx context.Context, tok Token) (Token, error) {
	secret, err := LoadClientSecret(p.ws.ClientSecretPath())
	if err != nil {
		return Token{}, err
	}
	endpoint := tok.TokenURI
	if endpoint == "" {
		endpoint = secret.TokenURI
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {tok.RefreshToken},
		"client_id":     {secret.ClientID},
		"client_secret": {secret.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Token{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Token{}, httpError(resp)
	}
	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Token{}, err
	}
	tok.AccessToken = body.AccessToken
	if body.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// SaveToken writes the token record with owner-only permissions.
func SaveToken(path string, tok Token) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(tok); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}
