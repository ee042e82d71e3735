package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/74Thirsty/cloudchain/backend"
)

// resumableSession sends sequential Content-Range chunks to the session URL
// the provider handed out. Drive answers 308 with a Range header while the
// transfer is incomplete and 200/201 with the file resource once the final
// chunk lands.
type resumableSession struct {
	client     *Client
	url        string
	totalBytes uint64
	sent       uint64
}

func (s *resumableSession) SendChunk(ctx context.Context, p []byte) (backend.ChunkAck, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.url, bytes.NewReader(p))
	if err != nil {
		return backend.ChunkAck{}, err
	}
	req.Header.Set("Content-Length", strconv.Itoa(len(p)))
	req.Header.Set("Content-Range", s.contentRange(len(p)))
	if err := s.client.authorize(ctx, req); err != nil {
		return backend.ChunkAck{}, err
	}
	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return backend.ChunkAck{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var res fileResource
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return backend.ChunkAck{}, fmt.Errorf("decode final metadata: %w", err)
		}
		s.sent = s.totalBytes
		size, _ := strconv.ParseUint(res.Size, 10, 64)
		if size == 0 {
			size = s.totalBytes
		}
		return backend.ChunkAck{
			BytesAcked: s.totalBytes,
			Done:       true,
			Object:     &backend.RemoteObject{Name: res.Name, ID: res.ID, Size: size},
		}, nil
	case 308: // Resume Incomplete
		s.sent = ackedFromRange(resp.Header.Get("Range"), s.sent+uint64(len(p)))
		return backend.ChunkAck{BytesAcked: s.sent}, nil
	default:
		return backend.ChunkAck{}, httpError(resp)
	}
}

func (s *resumableSession) contentRange(chunkLen int) string {
	if s.totalBytes == 0 {
		return "bytes */0"
	}
	start := s.sent
	end := start + uint64(chunkLen) - 1
	return fmt.Sprintf("bytes %d-%d/%d", start, end, s.totalBytes)
}

// ackedFromRange parses "bytes=0-N" into N+1 acknowledged bytes, falling
// back when the header is absent.
func ackedFromRange(header string, fallback uint64) uint64 {
	header = strings.TrimPrefix(header, "bytes=")
	_, upper, ok := strings.Cut(header, "-")
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(upper, 10, 64)
	if err != nil {
		return fallback
	}
	return n + 1
}
