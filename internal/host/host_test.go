package host

import (
	"errors"
	"testing"

	"github.com/danmuck/hostctl/internal/protocol"
	"github.com/danmuck/hostctl/internal/testutil/socktest"
	"github.com/danmuck/hostctl/internal/testutil/testlog"
	"github.com/danmuck/hostctl/internal/transport"
	"github.com/stretchr/testify/require"
)

type peers struct {
	api    *socktest.End
	upload *socktest.End
	sub    *socktest.End
	dialer *socktest.Dialer
}

// connectedHost returns a host wired to in-memory peers. The peer ends
// play the agent role.
func connectedHost(t *testing.T) (*Host, peers) {
	t.Helper()
	apiLocal, apiPeer := socktest.Pair()
	upLocal, upPeer := socktest.Pair()
	subLocal, subPeer := socktest.Pair()
	d := &socktest.Dialer{Req: apiLocal, Pub: upLocal, Sub: subLocal}

	h := New(d, transport.Config{SubscribeSettle: -1})
	require.NoError(t, h.Connect("localhost", 7101, 7102, 7103))
	t.Cleanup(func() { _ = h.Close() })
	return h, peers{api: apiPeer, upload: upPeer, sub: subPeer, dialer: d}
}

func TestConnectDialsEachRole(t *testing.T) {
	testlog.Start(t)
	h, p := connectedHost(t)
	require.True(t, h.Connected())
	require.Equal(t, "localhost", h.Hostname())
	require.Equal(t, []string{"tcp://localhost:7101", "tcp://localhost:7102"}, p.dialer.Endpoints)
}

func TestConnectReplacesPreviousSockets(t *testing.T) {
	testlog.Start(t)
	h, first := connectedHost(t)

	apiLocal, apiPeer := socktest.Pair()
	upLocal, _ := socktest.Pair()
	first.dialer.Req = apiLocal
	first.dialer.Pub = upLocal
	require.NoError(t, h.Connect("otherhost", 8101, 8102, 8103))

	require.True(t, errors.Is(first.api.SendStrings("Ok"), socktest.ErrClosed))

	require.NoError(t, h.Send("ping", false))
	msg, err := apiPeer.Recv()
	require.NoError(t, err)
	require.Equal(t, []string{"ping"}, msg.Strings())
	require.Equal(t, "otherhost", h.Hostname())
}

func TestConnectFailureLeavesHostUnconnected(t *testing.T) {
	testlog.Start(t)
	apiLocal, _ := socktest.Pair()
	d := &socktest.Dialer{Req: apiLocal, PubErr: errors.New("connection refused")}
	h := New(d, transport.Config{})

	err := h.Connect("localhost", 7101, 7102, 7103)
	var connErr *protocol.ConnectionError
	require.True(t, errors.As(err, &connErr))
	require.Equal(t, "tcp://localhost:7102", connErr.Endpoint)
	require.False(t, h.Connected())

	// the API socket dialed before the failure was released
	require.True(t, errors.Is(apiLocal.Send(nil), socktest.ErrClosed))
}

func TestOperationsFailBeforeConnect(t *testing.T) {
	h := New(&socktest.Dialer{}, transport.Config{})

	require.True(t, errors.Is(h.Send("moo", false), protocol.ErrNotConnected))
	require.True(t, errors.Is(h.RecvHeader(), protocol.ErrNotConnected))
	_, err := h.ExpectRecv("stdout", 1)
	require.True(t, errors.Is(err, protocol.ErrNotConnected))
	_, err = h.ExpectRecvMsg("stdout", 1)
	require.True(t, errors.Is(err, protocol.ErrNotConnected))
	require.True(t, errors.Is(h.SendChunk("/tmp/moo", 0, []byte{1}), protocol.ErrNotConnected))
	_, err = h.SendFile(protocol.EndpointFileUpload, "/tmp/moo", 123, 0, 0, nil)
	require.True(t, errors.Is(err, protocol.ErrNotConnected))
}

func TestOperationsFailAfterClose(t *testing.T) {
	testlog.Start(t)
	h, _ := connectedHost(t)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	require.False(t, h.Connected())
	require.True(t, errors.Is(h.Send("moo", false), protocol.ErrNotConnected))
}

func TestSendPreservesFramesAndFlags(t *testing.T) {
	testlog.Start(t)
	h, p := connectedHost(t)

	require.NoError(t, h.Send("moo", true))
	require.NoError(t, h.SendBytes([]byte{0, 1, 2}, true))
	require.NoError(t, h.Send("cow", false))

	msg, err := p.api.Recv()
	require.NoError(t, err)
	frames := msg.Frames()
	require.Len(t, frames, 3)
	require.Equal(t, "moo", string(frames[0].Data))
	require.True(t, frames[0].More)
	require.Equal(t, []byte{0, 1, 2}, frames[1].Data)
	require.True(t, frames[1].More)
	require.Equal(t, "cow", string(frames[2].Data))
	require.False(t, frames[2].More)
}

func TestRecvHeaderOk(t *testing.T) {
	h, p := connectedHost(t)
	require.NoError(t, p.api.SendStrings("Ok"))
	require.NoError(t, h.RecvHeader())
}

func TestRecvHeaderErrCarriesMessage(t *testing.T) {
	h, p := connectedHost(t)
	require.NoError(t, p.api.SendStrings("Err", "No such file or directory"))

	err := h.RecvHeader()
	var agentErr *protocol.AgentError
	require.True(t, errors.As(err, &agentErr))
	require.Equal(t, "No such file or directory", agentErr.Message)
}

func TestRecvHeaderErrWithoutMessage(t *testing.T) {
	h, p := connectedHost(t)
	require.NoError(t, p.api.SendStrings("Err"))

	var missing *protocol.MissingFrameError
	require.True(t, errors.As(h.RecvHeader(), &missing))
	require.Equal(t, "err_msg", missing.Field)
	require.Equal(t, uint8(1), missing.Order)
}

func TestRecvHeaderUnknownPanics(t *testing.T) {
	h, p := connectedHost(t)
	require.NoError(t, p.api.SendStrings("Moo"))
	require.PanicsWithValue(t, protocol.InvariantViolation{Header: "Moo"}, func() {
		_ = h.RecvHeader()
	})
}

func TestExpectRecvReturnsFramesInOrder(t *testing.T) {
	h, p := connectedHost(t)
	require.NoError(t, p.api.SendStrings("Ok", "Frame 0", "Frame 1"))
	require.NoError(t, h.RecvHeader())

	v, err := h.ExpectRecv("Frame 0", 0)
	require.NoError(t, err)
	require.Equal(t, "Frame 0", v)
	raw, err := h.ExpectRecvMsg("Frame 1", 1)
	require.NoError(t, err)
	require.Equal(t, []byte("Frame 1"), raw)

	_, err = h.ExpectRecv("Frame 2", 2)
	var missing *protocol.MissingFrameError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, &protocol.MissingFrameError{Field: "Frame 2", Order: 2}, missing)
}

func TestExpectRecvMissingFrame(t *testing.T) {
	h, p := connectedHost(t)
	require.NoError(t, p.api.SendStrings("Ok"))
	require.NoError(t, h.RecvHeader())

	_, err := h.ExpectRecv("Frame 0", 0)
	var missing *protocol.MissingFrameError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "Frame 0", missing.Field)
	require.Equal(t, uint8(0), missing.Order)

	_, err = h.ExpectRecvMsg("Frame 0", 0)
	require.True(t, errors.As(err, &missing))
}

func TestExpectRecvBeforeAnyResponse(t *testing.T) {
	h, _ := connectedHost(t)
	_, err := h.ExpectRecv("stdout", 2)
	var missing *protocol.MissingFrameError
	require.True(t, errors.As(err, &missing))
}
