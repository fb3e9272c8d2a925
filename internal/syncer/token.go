package syncer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/assemblysync/internal/remote"
)

// inviteToken is the wire shape of an invite link payload: the remote
// store's connection id (URL), API key and encryption password, bundled so
// a recipient's browser can self-configure without manual entry. The field
// names are part of the link format consumed by the routing layer.
type inviteToken struct {
	CID   string `json:"cId"`
	CKey  string `json:"cKey"`
	CPass string `json:"cPass"`
}

// EncodeInviteToken renders credentials as a URL-safe token:
// base64(percent-encode(JSON{cId, cKey, cPass})).
func EncodeInviteToken(creds remote.Credentials) (string, error) {
	payload, err := json.Marshal(inviteToken{
		CID:   creds.URL,
		CKey:  creds.APIKey,
		CPass: creds.Password,
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte(url.QueryEscape(string(payload)))), nil
}

// DecodeInviteToken reverses EncodeInviteToken.
func DecodeInviteToken(token string) (remote.Credentials, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return remote.Credentials{}, fmt.Errorf("invalid invite token: %w", err)
	}
	unescaped, err := url.QueryUnescape(string(raw))
	if err != nil {
		return remote.Credentials{}, fmt.Errorf("invalid invite token: %w", err)
	}
	var tok inviteToken
	if err := json.Unmarshal([]byte(unescaped), &tok); err != nil {
		return remote.Credentials{}, fmt.Errorf("invalid invite token: %w", err)
	}
	return remote.Credentials{URL: tok.CID, APIKey: tok.CKey, Password: tok.CPass}, nil
}
