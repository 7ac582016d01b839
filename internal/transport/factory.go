package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-zeromq/zmq4"
	"github.com/rs/zerolog/log"
)

var ErrFactoryClosed = errors.New("transport: factory closed")

// Factory is the process-wide socket source shared by every Host. Socket
// creation is serialized; sockets themselves belong to their caller.
type Factory struct {
	cfg Config

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewFactory creates a factory whose sockets live until Close.
func NewFactory(cfg Config) *Factory {
	ctx, cancel := context.WithCancel(context.Background())
	return &Factory{
		cfg:    cfg.WithDefaults(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Config returns the resolved transport configuration.
func (f *Factory) Config() Config {
	return f.cfg
}

// DialReq opens a request socket connected to endpoint.
func (f *Factory) DialReq(endpoint string) (Socket, error) {
	return f.dial(endpoint, zmq4.NewReq, "")
}

// DialPub opens a publish socket connected to endpoint.
func (f *Factory) DialPub(endpoint string) (Socket, error) {
	return f.dial(endpoint, zmq4.NewPub, "")
}

// DialSub opens a subscribe socket connected to endpoint and subscribed to topic.
func (f *Factory) DialSub(endpoint string, topic string) (Socket, error) {
	return f.dial(endpoint, zmq4.NewSub, topic)
}

type socketCtor func(ctx context.Context, opts ...zmq4.Option) zmq4.Socket

func (f *Factory) dial(endpoint string, ctor socketCtor, topic string) (Socket, error) {
	sock, err := f.create(ctor)
	if err != nil {
		return nil, err
	}
	if err := sock.Dial(endpoint); err != nil {
		_ = sock.Close()
		return nil, fmt.Errorf("transport: dial %s: %w", endpoint, err)
	}
	if topic != "" {
		if err := sock.SetOption(zmq4.OptionSubscribe, topic); err != nil {
			_ = sock.Close()
			return nil, fmt.Errorf("transport: subscribe %q: %w", topic, err)
		}
	}
	log.Debug().Str("endpoint", endpoint).Str("type", string(sock.Type())).Msg("transport socket connected")
	return &zmqSocket{sock: sock}, nil
}

func (f *Factory) create(ctor socketCtor) (zmq4.Socket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrFactoryClosed
	}
	return ctor(f.ctx,
		zmq4.WithDialerTimeout(f.cfg.DialTimeout),
		zmq4.WithDialerRetry(f.cfg.DialRetry),
		zmq4.WithDialerMaxRetries(f.cfg.DialMaxRetries),
	), nil
}

// Close cancels the shared context, which tears down every socket the
// factory created. Close is idempotent.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.cancel()
	return nil
}
