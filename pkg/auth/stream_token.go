package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// StreamTokenSigner signs and verifies the time-limited tokens embedded in
// streaming URLs. Tokens are stateless: nothing is persisted and individual
// tokens cannot be revoked, only the whole secret can be rotated.
type StreamTokenSigner struct {
	secret []byte
}

// NewStreamTokenSigner creates a signer around the shared secret
func NewStreamTokenSigner(secret string) *StreamTokenSigner {
	return &StreamTokenSigner{
		secret: []byte(secret),
	}
}

// Sign computes the lowercase hex HMAC-SHA256 signature over the token identity
func (s *StreamTokenSigner) Sign(videoID, mediaSourceID string, expiresAt int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%s:%d", videoID, mediaSourceID, expiresAt)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the provided signature authorizes streaming the given
// media source until expiresAt. Hex case is not significant; the comparison is
// constant time.
func (s *StreamTokenSigner) Verify(videoID, mediaSourceID string, expiresAt int64, signature string, now time.Time) bool {
	if now.Unix() > expiresAt {
		return false
	}

	expected := s.Sign(videoID, mediaSourceID, expiresAt)
	provided := strings.ToLower(signature)

	return hmac.Equal([]byte(expected), []byte(provided))
}

// StreamURL builds the signed streaming URL handed to the playback client
func (s *StreamTokenSigner) StreamURL(baseURL, videoID, mediaSourceID string, expiresAt int64) string {
	signature := s.Sign(videoID, mediaSourceID, expiresAt)
	return fmt.Sprintf("%s/stream/%s/%s/%d/%s",
		strings.TrimSuffix(baseURL, "/"), videoID, mediaSourceID, expiresAt, signature)
}
