// Package socktest provides in-memory transport sockets for tests.
package socktest

import (
	"errors"
	"sync"

	"github.com/danmuck/hostctl/internal/protocol/frame"
	"github.com/danmuck/hostctl/internal/transport"
)

var ErrClosed = errors.New("socktest: socket closed")

type pipe struct {
	ch        chan frame.Message
	done      chan struct{}
	closeOnce sync.Once
}

func newPipe() *pipe {
	return &pipe{ch: make(chan frame.Message, 64), done: make(chan struct{})}
}

func (p *pipe) close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// End is one side of an in-memory socket pair.
type End struct {
	in  *pipe
	out *pipe
}

// Pair returns two connected ends. Messages sent on one are received on the other.
func Pair() (*End, *End) {
	ab := newPipe()
	ba := newPipe()
	return &End{in: ba, out: ab}, &End{in: ab, out: ba}
}

func (e *End) Send(msg frame.Message) error {
	select {
	case <-e.out.done:
		return ErrClosed
	default:
	}
	select {
	case e.out.ch <- msg.Clone():
		return nil
	case <-e.out.done:
		return ErrClosed
	}
}

func (e *End) Recv() (frame.Message, error) {
	select {
	case msg := <-e.in.ch:
		return msg, nil
	case <-e.in.done:
		return nil, ErrClosed
	}
}

// SendStrings is a shorthand for Send(frame.FromStrings(parts...)).
func (e *End) SendStrings(parts ...string) error {
	return e.Send(frame.FromStrings(parts...))
}

func (e *End) Close() error {
	e.in.close()
	e.out.close()
	return nil
}

// Dialer hands out preconfigured sockets and records what was dialed.
type Dialer struct {
	mu sync.Mutex

	Req transport.Socket
	Pub transport.Socket
	Sub transport.Socket

	ReqErr error
	PubErr error
	SubErr error

	Endpoints []string
	Topics    []string
}

var _ transport.Dialer = (*Dialer)(nil)

func (d *Dialer) DialReq(endpoint string) (transport.Socket, error) {
	d.record(endpoint, "")
	return d.Req, d.ReqErr
}

func (d *Dialer) DialPub(endpoint string) (transport.Socket, error) {
	d.record(endpoint, "")
	return d.Pub, d.PubErr
}

func (d *Dialer) DialSub(endpoint string, topic string) (transport.Socket, error) {
	d.record(endpoint, topic)
	return d.Sub, d.SubErr
}

func (d *Dialer) record(endpoint string, topic string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Endpoints = append(d.Endpoints, endpoint)
	if topic != "" {
		d.Topics = append(d.Topics, topic)
	}
}
