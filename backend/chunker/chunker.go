package chunker

// Chunk is one planned slice of a file transfer.
type Chunk struct {
	Offset   uint64
	Length   uint64
	LastPart bool
}

// Chunker walks a file of a known size in fixed-size pieces. A zero-byte
// file yields a single empty last chunk so the remote session still gets a
// terminating send.
type Chunker struct {
	totalBytes uint64
	chunkSize  uint64
	offset     uint64
	emitted    bool
}

func NewChunker(totalBytes, chunkSize uint64) *Chunker {
	if chunkSize == 0 {
		panic("chunkSize must be > 0")
	}
	return &Chunker{totalBytes: totalBytes, chunkSize: chunkSize}
}

// Count returns the number of chunks the plan will emit.
func (c *Chunker) Count() uint64 {
	if c.totalBytes == 0 {
		return 1
	}
	return (c.totalBytes + c.chunkSize - 1) / c.chunkSize
}

// Next returns the next planned chunk. ok == false means the plan is
// exhausted.
func (c *Chunker) Next() (Chunk, bool) {
	if c.totalBytes == 0 {
		if c.emitted {
			return Chunk{}, false
		}
		c.emitted = true
		return Chunk{Offset: 0, Length: 0, LastPart: true}, true
	}
	if c.offset >= c.totalBytes {
		return Chunk{}, false
	}
	length := c.chunkSize
	if remaining := c.totalBytes - c.offset; remaining < length {
		length = remaining
	}
	ch := Chunk{
		Offset:   c.offset,
		Length:   length,
		LastPart: c.offset+length == c.totalBytes,
	}
	c.offset += length
	return ch, true
}
