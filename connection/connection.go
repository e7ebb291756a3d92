// Package connection establishes connections to configured Seismic networks.
package connection

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/SeismicSystems/seismic-go/client"
	"github.com/SeismicSystems/seismic-go/config"
	"github.com/SeismicSystems/seismic-go/modules/seismic"
)

// RuntimeClient is a client.RuntimeClient augmented with a shielding session and commonly used
// modules.
type RuntimeClient struct {
	client.RuntimeClient

	Session *client.Session
	Seismic seismic.V1
}

// Connection is the general node connection interface.
type Connection interface {
	// Network returns the configuration of the connected network.
	Network() *config.Network

	// Runtime returns an interface to the node.
	Runtime() RuntimeClient

	// Close closes the connection.
	Close()
}

type connection struct {
	net *config.Network
	rc  RuntimeClient
}

func (c *connection) Network() *config.Network {
	return c.net
}

func (c *connection) Runtime() RuntimeClient {
	return c.rc
}

func (c *connection) Close() {
	c.rc.Close()
}

// New wraps an existing JSON-RPC client into a connection.
//
// The shielding session uses an ephemeral client key.
func New(raw *rpc.Client, net *config.Network) Connection {
	cli := client.New(raw)
	session := client.NewSession(cli, nil)
	return &connection{
		net: net,
		rc: RuntimeClient{
			RuntimeClient: cli,
			Session:       session,
			Seismic:       seismic.NewV1(cli, session),
		},
	}
}

// Verify requests the chain id from the node and compares it with the local configuration to
// reject mismatches early.
func Verify(ctx context.Context, conn Connection) error {
	chainID, err := conn.Runtime().ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve remote node's chain id: %w", err)
	}
	if !chainID.IsUint64() || chainID.Uint64() != conn.Network().ChainID {
		return fmt.Errorf("remote node's chain id mismatch (expected: %d got: %s)", conn.Network().ChainID, chainID)
	}
	return nil
}

// Connect establishes a connection with the target network.
func Connect(ctx context.Context, net *config.Network) (Connection, error) {
	conn, err := ConnectNoVerify(ctx, net)
	if err != nil {
		return nil, err
	}
	if err = Verify(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// ConnectNoVerify establishes a connection with the target network,
// omitting the chain id check.
func ConnectNoVerify(ctx context.Context, net *config.Network) (Connection, error) {
	var opts []rpc.ClientOption
	if !net.IsLocalRPC() {
		// Configure TLS for non-local nodes.
		opts = append(opts, rpc.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		}))
	}

	raw, err := rpc.DialOptions(ctx, net.RPCEndpoint(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", net.RPC, err)
	}
	return New(raw, net), nil
}
