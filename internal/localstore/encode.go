package localstore

import (
	"encoding/base64"
	"net/url"
)

// The stored form of a value is a light obfuscation, not encryption: a
// deterrent against casual inspection of the on-device database, explicitly
// not a defense against an attacker with device access.
//
// Chain: JSON -> percent-encode -> base64 -> character-reverse -> base64.

func encodeValue(jsonText string) string {
	escaped := url.QueryEscape(jsonText)
	inner := base64.StdEncoding.EncodeToString([]byte(escaped))
	return base64.StdEncoding.EncodeToString([]byte(reverseString(inner)))
}

func decodeValue(stored string) (string, error) {
	outer, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", err
	}
	inner, err := base64.StdEncoding.DecodeString(reverseString(string(outer)))
	if err != nil {
		return "", err
	}
	return url.QueryUnescape(string(inner))
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
