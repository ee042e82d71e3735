package backend

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/74Thirsty/cloudchain/backend/chunker"
	"github.com/74Thirsty/cloudchain/backend/filesystem"
)

// DefaultChunkSize is the bounded size of each resumable-session send.
const DefaultChunkSize uint64 = 8 << 20

// UploadEngine drives one chunked resumable transfer at a time. It fails
// fast: any fault in the chunk loop surfaces as a single terminal error and
// retry policy is left to the caller. There is no timeout; callers wanting
// bounded latency wrap Upload with a deadline context of their own.
type UploadEngine struct {
	remote    RemoteStorage
	ws        Workspace
	chunkSize uint64
	metrics   *UploadMetrics
}

func NewUploadEngine(remote RemoteStorage, ws Workspace, chunkSize uint64, metrics *UploadMetrics) *UploadEngine {
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	return &UploadEngine{remote: remote, ws: ws, chunkSize: chunkSize, metrics: metrics}
}

// Upload transfers one local file into the resolved remote folder, reports
// cumulative acknowledged bytes to progress after every chunk, mirrors the
// file into the account workspace, and returns the remote object metadata.
func (e *UploadEngine) Upload(ctx context.Context, account string, file filesystem.FileInfo, folder Folder, progress ProgressFunc) (RemoteObject, error) {
	src, err := os.Open(file.AbsPath)
	if err != nil {
		return RemoteObject{}, fmt.Errorf("%w: open %s: %v", ErrTransfer, file.AbsPath, err)
	}
	defer src.Close()

	session, err := e.remote.CreateUpload(ctx, folder, file.Name, file.Size)
	if err != nil {
		return RemoteObject{}, fmt.Errorf("%w: create session for %s: %v", ErrTransfer, file.Name, err)
	}

	obj, err := e.sendChunks(ctx, session, src, file, progress)
	if err != nil {
		return RemoteObject{}, err
	}

	if _, err := e.ws.Mirror(account, file.AbsPath); err != nil {
		return RemoteObject{}, err
	}
	if e.metrics != nil {
		e.metrics.ObserveFile()
	}
	return obj, nil
}

func (e *UploadEngine) sendChunks(ctx context.Context, session UploadSession, src io.Reader, file filesystem.FileInfo, progress ProgressFunc) (RemoteObject, error) {
	plan := chunker.NewChunker(file.Size, e.chunkSize)
	buf := make([]byte, e.chunkSize)

	var lastAcked uint64
	for {
		ch, ok := plan.Next()
		if !ok {
			break
		}
		payload := buf[:ch.Length]
		if ch.Length > 0 {
			if _, err := io.ReadFull(src, payload); err != nil {
				return RemoteObject{}, fmt.Errorf("%w: read %s at offset %d: %v", ErrTransfer, file.Name, ch.Offset, err)
			}
		}
		ack, err := session.SendChunk(ctx, payload)
		if err != nil {
			return RemoteObject{}, fmt.Errorf("%w: send %s at offset %d: %v", ErrTransfer, file.Name, ch.Offset, err)
		}
		// The reader has already consumed through the end of this chunk, so a
		// session acknowledging anything else would desynchronize the next
		// declared range from the bytes it carries.
		if want := ch.Offset + ch.Length; !ack.Done && ack.BytesAcked != want {
			return RemoteObject{}, fmt.Errorf("%w: %s: remote acknowledged %d bytes at offset %d, expected %d", ErrTransfer, file.Name, ack.BytesAcked, ch.Offset, want)
		}
		if e.metrics != nil && ack.BytesAcked > lastAcked {
			e.metrics.ObserveChunk(ack.BytesAcked - lastAcked)
		}
		lastAcked = ack.BytesAcked
		if progress != nil {
			progress(ack.BytesAcked)
		}
		if ack.Done {
			if ack.Object == nil {
				return RemoteObject{}, fmt.Errorf("%w: %s: session finished without object metadata", ErrTransfer, file.Name)
			}
			return *ack.Object, nil
		}
	}
	return RemoteObject{}, fmt.Errorf("%w: %s: session never completed", ErrTransfer, file.Name)
}
