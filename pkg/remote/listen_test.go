package remote

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenBindsFreePort(t *testing.T) {
	ln, err := Listen("127.0.0.1:0", 3)
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}

func TestListenPortInUse(t *testing.T) {
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer blocker.Close()

	_, err = Listen(blocker.Addr().String(), 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPortInUse)
}

func TestListenRecoversWhenPortFrees(t *testing.T) {
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := blocker.Addr().String()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ln, lerr := Listen(addr, 10)
		if lerr == nil {
			_ = ln.Close()
		}
		assert.NoError(t, lerr)
	}()
	require.NoError(t, blocker.Close())
	<-done
}
