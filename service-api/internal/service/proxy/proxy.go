package proxy

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"deovr-bridge/pkg/auth"
	"deovr-bridge/pkg/catalog"
	"deovr-bridge/pkg/logger"
	"deovr-bridge/pkg/model"

	"github.com/google/uuid"
)

// Relay chunk size. Large enough to keep syscall overhead low on 4K streams,
// small enough that a seek abort never wastes much buffered data.
const chunkSize = 2 << 20 // 2 MiB

var (
	// ErrTokenExpired is returned when the signed URL's expiry has passed.
	ErrTokenExpired = errors.New("stream token expired")
	// ErrBadSignature is returned when the signature does not match.
	ErrBadSignature = errors.New("stream token signature mismatch")
)

// Service validates signed stream requests and relays the origin's bytes.
// It holds no per-stream state; every request carries everything it needs.
type Service struct {
	signer      *auth.StreamTokenSigner
	originBase  string
	originToken string
	client      *http.Client
	now         func() time.Time
}

// NewService creates a new streaming proxy. The upstream client carries no
// timeout: a stream legitimately lasts as long as the video does.
func NewService(signer *auth.StreamTokenSigner, originBaseURL, originAPIToken string) *Service {
	return &Service{
		signer:      signer,
		originBase:  originBaseURL,
		originToken: originAPIToken,
		client:      &http.Client{},
		now:         time.Now,
	}
}

// Authorize checks the signed request identity before any upstream contact.
func (s *Service) Authorize(videoID uuid.UUID, mediaSourceID string, expiresAt int64, signature string) error {
	canonical := model.CanonicalVideoID(videoID)

	if s.now().Unix() > expiresAt {
		return ErrTokenExpired
	}

	if !s.signer.Verify(canonical, mediaSourceID, expiresAt, signature, s.now()) {
		logger.Warnf("stream signature rejected for %s: expected %s, provided %s",
			canonical, s.signer.Sign(canonical, mediaSourceID, expiresAt), signature)
		return ErrBadSignature
	}

	return nil
}

// Stream forwards the request to the origin and relays the response. The
// Range header travels upstream verbatim; the token fields never do. Upstream
// status and headers are mirrored, minus Transfer-Encoding which the relay
// manages itself. A client abort mid-stream ends the relay quietly.
func (s *Service) Stream(w http.ResponseWriter, r *http.Request, videoID uuid.UUID, mediaSourceID string) error {
	upstreamURL := catalog.OriginStreamURL(s.originBase, model.CanonicalVideoID(videoID), mediaSourceID)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstreamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build upstream request: %w", err)
	}
	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	if s.originToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.originToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("origin unreachable: %w", err)
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		if key == "Transfer-Encoding" {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	s.relay(w, r, resp.Body)
	return nil
}

// relay copies the body in bounded chunks, flushing after each so the player
// sees bytes as they arrive. Once headers are out every failure is terminal
// for this response; the client retries with a fresh request.
func (s *Service) relay(w http.ResponseWriter, r *http.Request, body io.Reader) {
	buf := make([]byte, chunkSize)
	flusher, _ := w.(http.Flusher)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return // client went away
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			if readErr != io.EOF && r.Context().Err() == nil {
				logger.Warnf("stream relay interrupted: %v", readErr)
			}
			return
		}
	}
}
