// Package host manages the sockets that connect a controller to one
// managed host's agent.
//
// A Host is not safe for concurrent use. Each request is written with
// Send and answered with RecvHeader followed by ExpectRecv calls, all on
// the same goroutine. There is no timeout on a reply; a stalled agent
// blocks the caller until the socket is closed.
package host

import (
	"errors"
	"time"

	"github.com/danmuck/hostctl/internal/protocol"
	"github.com/danmuck/hostctl/internal/protocol/frame"
	"github.com/danmuck/hostctl/internal/transport"
	"github.com/rs/zerolog/log"
)

// Host is the connection state for one managed host.
type Host struct {
	dialer transport.Dialer
	cfg    transport.Config

	hostname     string
	api          transport.Socket
	upload       transport.Socket
	downloadPort uint32

	out frame.Builder
	in  *frame.Reader
}

// New creates an unconnected host that opens sockets through dialer.
func New(dialer transport.Dialer, cfg transport.Config) *Host {
	return &Host{dialer: dialer, cfg: cfg.WithDefaults()}
}

// NewFromFactory creates an unconnected host sharing f.
func NewFromFactory(f *transport.Factory) *Host {
	return New(f, f.Config())
}

// Hostname returns the host last passed to Connect.
func (h *Host) Hostname() string {
	return h.hostname
}

// Connected reports whether the API socket is open.
func (h *Host) Connected() bool {
	return h.api != nil
}

// Connect opens the API and upload sockets and records the download port.
// Any sockets from a previous Connect are closed first.
func (h *Host) Connect(hostname string, apiPort uint32, uploadPort uint32, downloadPort uint32) error {
	if err := h.Close(); err != nil {
		log.Warn().Err(err).Str("host", h.hostname).Msg("host close before reconnect")
	}

	apiEndpoint := transport.TCPEndpoint(hostname, apiPort)
	api, err := h.dialer.DialReq(apiEndpoint)
	if err != nil {
		return &protocol.ConnectionError{Op: "connect", Endpoint: apiEndpoint, Err: err}
	}

	uploadEndpoint := transport.TCPEndpoint(hostname, uploadPort)
	upload, err := h.dialer.DialPub(uploadEndpoint)
	if err != nil {
		_ = api.Close()
		return &protocol.ConnectionError{Op: "connect", Endpoint: uploadEndpoint, Err: err}
	}

	h.hostname = hostname
	h.api = api
	h.upload = upload
	h.downloadPort = downloadPort
	log.Debug().Str("host", hostname).Uint32("api_port", apiPort).Uint32("upload_port", uploadPort).
		Uint32("download_port", downloadPort).Msg("host connected")
	return nil
}

// Close closes any open sockets. It is safe to call more than once.
func (h *Host) Close() error {
	var errs []error
	if h.api != nil {
		errs = append(errs, h.api.Close())
		h.api = nil
	}
	if h.upload != nil {
		errs = append(errs, h.upload.Close())
		h.upload = nil
	}
	h.downloadPort = 0
	h.out.Reset()
	h.in = nil
	return errors.Join(errs...)
}

// Send queues one string frame. The request is written once a frame is
// sent with more set to false.
func (h *Host) Send(msg string, more bool) error {
	return h.SendBytes([]byte(msg), more)
}

// SendBytes queues one raw frame.
func (h *Host) SendBytes(data []byte, more bool) error {
	if h.api == nil {
		return notConnected("send")
	}
	msg, done := h.out.Add(data, more)
	if !done {
		return nil
	}
	h.in = nil
	if err := h.api.Send(msg); err != nil {
		return &protocol.ConnectionError{Op: "send", Endpoint: h.hostname, Err: err}
	}
	return nil
}

// RecvHeader reads the next response and interprets its header frame. An
// "Err" header is returned as a *protocol.AgentError. Any other header
// besides "Ok" panics with protocol.InvariantViolation.
func (h *Host) RecvHeader() error {
	if h.api == nil {
		return notConnected("recv")
	}
	msg, err := h.api.Recv()
	if err != nil {
		return &protocol.ConnectionError{Op: "recv", Endpoint: h.hostname, Err: err}
	}
	r, err := frame.NewReader(msg)
	if err != nil {
		return &protocol.MissingFrameError{Field: "header", Order: 0}
	}
	h.in = r

	switch header := string(r.Current()); header {
	case protocol.HeaderOk:
		return nil
	case protocol.HeaderErr:
		text, err := h.ExpectRecv("err_msg", 1)
		if err != nil {
			return err
		}
		return &protocol.AgentError{Message: text}
	default:
		panic(protocol.InvariantViolation{Header: header})
	}
}

// ExpectRecv returns the next response frame as a string.
func (h *Host) ExpectRecv(name string, order uint8) (string, error) {
	data, err := h.ExpectRecvMsg(name, order)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ExpectRecvMsg returns the next response frame. The current frame must
// carry the continuation flag, otherwise the response is short and a
// *protocol.MissingFrameError names the field that was expected.
func (h *Host) ExpectRecvMsg(name string, order uint8) ([]byte, error) {
	if h.api == nil {
		return nil, notConnected("recv")
	}
	if h.in == nil {
		return nil, &protocol.MissingFrameError{Field: name, Order: order}
	}
	data, ok := h.in.Next()
	if !ok {
		return nil, &protocol.MissingFrameError{Field: name, Order: order}
	}
	return data, nil
}

func (h *Host) settle() {
	if h.cfg.SubscribeSettle > 0 {
		time.Sleep(h.cfg.SubscribeSettle)
	}
}

func notConnected(op string) error {
	return &protocol.ConnectionError{Op: op, Err: protocol.ErrNotConnected}
}
