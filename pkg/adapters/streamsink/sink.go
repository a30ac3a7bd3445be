// Package streamsink writes packet payloads back to back as a raw
// elementary stream, the way the original tool dumped its output file.
package streamsink

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/ports"
)

// ErrFinalized is returned for writes after Finalize.
var ErrFinalized = errors.New("streamsink: already finalized")

// Sink is a ports.PacketSink writing payloads to a file.
type Sink struct {
	path string
	log  ports.Logger

	file io.WriteCloser
	w    *bufio.Writer

	packets   int
	bytes     int64
	finalized bool
}

// New creates path through fs and returns a sink writing to it.
func New(fs ports.FileSystem, path string, log ports.Logger) (*Sink, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Sink{
		path: path,
		log:  log.WithComponent("streamsink"),
		file: f,
		w:    bufio.NewWriter(f),
	}, nil
}

// WritePacket appends the packet payload.
func (s *Sink) WritePacket(pkt media.Packet) error {
	if s.finalized {
		return ErrFinalized
	}
	n, err := s.w.Write(pkt.Data)
	s.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("write packet pts %d: %w", pkt.PTS, err)
	}
	s.packets++
	return nil
}

// Finalize flushes buffered data and closes the file.
func (s *Sink) Finalize() error {
	if s.finalized {
		return ErrFinalized
	}
	s.finalized = true

	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	if err := errors.Join(flushErr, closeErr); err != nil {
		return fmt.Errorf("finalize %s: %w", s.path, err)
	}
	s.log.Info("Stream written: %s (%d packets, %d bytes)", s.path, s.packets, s.bytes)
	return nil
}

// Close releases the file without flushing. It is a no-op after Finalize.
func (s *Sink) Close() error {
	if s.finalized {
		return nil
	}
	s.finalized = true
	return s.file.Close()
}

var _ ports.PacketSink = (*Sink)(nil)
