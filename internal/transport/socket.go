package transport

import (
	"net"
	"strconv"

	"github.com/danmuck/hostctl/internal/protocol/frame"
	"github.com/go-zeromq/zmq4"
)

// Socket sends and receives whole multipart messages.
type Socket interface {
	Send(msg frame.Message) error
	Recv() (frame.Message, error)
	Close() error
}

// Dialer opens the three socket roles a Host needs.
type Dialer interface {
	DialReq(endpoint string) (Socket, error)
	DialPub(endpoint string) (Socket, error)
	DialSub(endpoint string, topic string) (Socket, error)
}

// TCPEndpoint formats a zmq tcp endpoint for host:port.
func TCPEndpoint(host string, port uint32) string {
	return "tcp://" + net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}

// zmqSocket adapts a zmq4 socket to Socket.
type zmqSocket struct {
	sock zmq4.Socket
}

func (s *zmqSocket) Send(msg frame.Message) error {
	if len(msg) == 1 {
		return s.sock.Send(zmq4.NewMsg(msg[0]))
	}
	return s.sock.SendMulti(zmq4.NewMsgFrom(msg...))
}

func (s *zmqSocket) Recv() (frame.Message, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return nil, err
	}
	return frame.Message(msg.Frames), nil
}

func (s *zmqSocket) Close() error {
	return s.sock.Close()
}
