package remotesign

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/ledgerkeys/keypair"
	"xdao.co/ledgerkeys/lkerr"
)

// Client implements keypair.Signer against a remote Signer service, bound to
// one key name.
type Client struct {
	cc     *grpc.ClientConn
	client SignerClient

	// KeyName selects the server-side key all calls are bound to.
	KeyName string

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout bounds the initial dial when non-zero. The dial then blocks
	// until the connection is ready or the deadline passes.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target, keyName string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		// Without a blocking dial the deadline would bound nothing.
		dialOpts = append(dialOpts, grpc.WithBlock())
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, lkerr.Wrap(lkerr.KindIO, "LK-RPC-101", "dial signer service", err)
	}
	return &Client{cc: cc, client: NewSignerClient(cc), KeyName: keyName}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) PublicKey(ctx context.Context) (keypair.PublicKey, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.PublicKey(ctx, wrapperspb.String(c.KeyName))
	if err != nil {
		return keypair.PublicKey{}, lkerr.Wrap(lkerr.KindIO, "LK-RPC-201", "remote public key", err)
	}
	return keypair.NewPublicKeyFromBytes(reply.GetValue())
}

func (c *Client) Sign(ctx context.Context, message []byte) (keypair.Signature, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Sign(ctx, wrapperspb.Bytes(EncodeSignRequest(c.KeyName, message)))
	if err != nil {
		return keypair.Signature{}, lkerr.Wrap(lkerr.KindIO, "LK-RPC-301", "remote sign", err)
	}
	return keypair.NewSignatureFromBytes(reply.GetValue())
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

var _ keypair.Signer = (*Client)(nil)
