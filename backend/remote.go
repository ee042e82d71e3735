package backend

import "context"

// RemoteObject is the final metadata of an object the remote store accepted.
type RemoteObject struct {
	Name string
	ID   string
	Size uint64
}

// Folder is a resolved handle to a remote folder.
type Folder struct {
	ID   string
	Name string
}

// ChunkAck reports the remote's acknowledgement of one chunk. Object is
// non-nil only when Done is true.
type ChunkAck struct {
	BytesAcked uint64
	Done       bool
	Object     *RemoteObject
}

// UploadSession is one resumable transfer. Resumption after a transport
// fault is the remote API's concern; this interface only carries chunks.
type UploadSession interface {
	SendChunk(ctx context.Context, p []byte) (ChunkAck, error)
}

// RemoteStorage is the remote object-storage API scoped to one account.
type RemoteStorage interface {
	// ResolveOrCreateFolder finds the named folder under the account root,
	// creating it when absent. Create-if-absent is not guaranteed race-free
	// by the provider; uploads for one account never run concurrently, so
	// the hazard is avoided rather than solved.
	ResolveOrCreateFolder(ctx context.Context, name string) (Folder, error)

	CreateUpload(ctx context.Context, folder Folder, name string, totalBytes uint64) (UploadSession, error)

	Quota(ctx context.Context) (used, limit uint64, err error)
}

// CredentialProvider yields a bearer token for an account. Acquisition may
// suspend for interactive sign-in on first use; that flow is owned by the
// provider, not by the core.
type CredentialProvider interface {
	Token(ctx context.Context, account string) (string, error)
}

// ProgressFunc receives the cumulative acknowledged byte count after every
// chunk.
type ProgressFunc func(bytesDone uint64)
