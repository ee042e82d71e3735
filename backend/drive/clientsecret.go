package drive

import (
	"encoding/json"
	"fmt"
	"os"
)

// ClientSecret is the OAuth application identity shared by every chain
// member. The file layout matches the provider's downloadable
// client_secret.json, so the operator can drop in the real one.
type ClientSecret struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	TokenURI     string `json:"token_uri"`
	AuthURI      string `json:"auth_uri,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
}

type clientSecretFile struct {
	Installed ClientSecret `json:"installed"`
}

func LoadClientSecret(path string) (ClientSecret, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientSecret{}, fmt.Errorf("read client secret: %w", err)
	}
	var file clientSecretFile
	if err := json.Unmarshal(data, &file); err != nil {
		return ClientSecret{}, fmt.Errorf("decode client secret: %w", err)
	}
	return file.Installed, nil
}

// ScaffoldClientSecret writes a placeholder record for the operator to
// replace with their real application credentials. No-op when the file
// already exists.
func ScaffoldClientSecret(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	file := clientSecretFile{Installed: ClientSecret{
		ClientID:     "DUMMY_CLIENT_ID.apps.googleusercontent.com",
		ClientSecret: "DUMMY_SECRET",
		TokenURI:     "https://oauth2.googleapis.com/token",
		AuthURI:      "https://accounts.google.com/o/oauth2/auth",
		ProjectID:    "cloudchain-local",
	}}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write client secret: %w", err)
	}
	return nil
}
