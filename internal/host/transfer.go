package host

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/danmuck/hostctl/internal/protocol"
	"github.com/danmuck/hostctl/internal/transport"
	"github.com/rs/zerolog/log"
)

// SendFile subscribes to the download topic for path, then sends the
// transfer descriptor on the API socket. The caller owns the returned
// subscribe socket.
//
// The subscriber is given Config.SubscribeSettle to join before the
// request goes out. Publish/subscribe offers no join acknowledgement, so
// this delay lowers the chance of a missed frame without ruling it out.
func (h *Host) SendFile(endpoint string, path string, hash uint64, size uint64, totalChunks uint64, opts []protocol.FileOption) (transport.Socket, error) {
	if h.api == nil {
		return nil, notConnected("send_file")
	}

	downloadEndpoint := transport.TCPEndpoint(h.hostname, h.downloadPort)
	sub, err := h.dialer.DialSub(downloadEndpoint, path)
	if err != nil {
		return nil, &protocol.ConnectionError{Op: "subscribe", Endpoint: downloadEndpoint, Err: err}
	}
	h.settle()

	desc := protocol.Upload{Path: path, Hash: hash, Size: size, TotalChunks: totalChunks, Options: opts}
	if err := protocol.Request(h, endpoint, desc.Args()...); err != nil {
		_ = sub.Close()
		return nil, err
	}
	return sub, nil
}

// SendChunk publishes one chunk of path. Delivery is not acknowledged.
func (h *Host) SendChunk(path string, index uint64, chunk []byte) error {
	if h.upload == nil {
		return notConnected("send_chunk")
	}
	c := protocol.Chunk{Path: path, Index: index, Data: chunk}
	if err := h.upload.Send(c.Message()); err != nil {
		return &protocol.ConnectionError{Op: "send_chunk", Endpoint: h.hostname, Err: err}
	}
	return nil
}

// Digest returns the xxhash64 and length of everything read from r.
func Digest(r io.Reader) (uint64, uint64, error) {
	d := xxhash.New()
	n, err := io.Copy(d, r)
	if err != nil {
		return 0, 0, err
	}
	return d.Sum64(), uint64(n), nil
}

// ChunkCount returns how many chunks of chunkSize cover size bytes.
func ChunkCount(size uint64, chunkSize int) uint64 {
	if size == 0 || chunkSize <= 0 {
		return 0
	}
	cs := uint64(chunkSize)
	return (size + cs - 1) / cs
}

// Upload copies localPath to remotePath on the managed host. It declares
// the content hash, size and chunk count, publishes every chunk, then
// waits for the agent's verdict on the API socket.
func (h *Host) Upload(localPath string, remotePath string, opts ...protocol.FileOption) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("host: upload open: %w", err)
	}
	defer f.Close()

	hash, size, err := Digest(f)
	if err != nil {
		return fmt.Errorf("host: upload digest: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("host: upload rewind: %w", err)
	}

	chunkSize := h.cfg.ChunkSize
	total := ChunkCount(size, chunkSize)
	sub, err := h.SendFile(protocol.EndpointFileUpload, remotePath, hash, size, total, opts)
	if err != nil {
		return err
	}
	defer sub.Close()

	log.Debug().Str("host", h.hostname).Str("path", remotePath).Uint64("size", size).
		Uint64("chunks", total).Msg("host upload start")
	for idx := uint64(0); idx < total; idx++ {
		buf := make([]byte, chunkSize)
		n, err := io.ReadFull(f, buf)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("host: upload read chunk %d: %w", idx, err)
		}
		if err := h.SendChunk(remotePath, idx, buf[:n]); err != nil {
			return err
		}
	}
	return h.RecvHeader()
}
