package remotesign

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/ledgerkeys/keypair"
	"xdao.co/ledgerkeys/lkerr"
)

// Server exposes named signers over the Signer gRPC service. Private key
// material never crosses the wire: callers get public key bytes and
// signature bytes only.
type Server struct {
	UnimplementedSignerServer

	// Lookup resolves a key name to a signer. Required.
	Lookup func(name string) (keypair.Signer, error)
}

func (s *Server) PublicKey(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	signer, err := s.lookup(in.GetValue())
	if err != nil {
		return nil, err
	}
	pub, err := signer.PublicKey(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(pub.Bytes()), nil
}

func (s *Server) Sign(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	name, message, err := DecodeSignRequest(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	signer, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(ctx, message)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.Bytes(sig.Bytes()), nil
}

func (s *Server) lookup(name string) (keypair.Signer, error) {
	if s == nil || s.Lookup == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing signer lookup")
	}
	signer, err := s.Lookup(name)
	if err != nil {
		if lkerr.IsKind(err, lkerr.KindIO) {
			return nil, status.Error(codes.NotFound, "unknown key name")
		}
		return nil, mapErr(err)
	}
	if signer == nil {
		return nil, status.Error(codes.NotFound, "unknown key name")
	}
	return signer, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case lkerr.IsKind(err, lkerr.KindInvalidFormat),
		lkerr.IsKind(err, lkerr.KindInvalidLength),
		lkerr.IsKind(err, lkerr.KindChecksumMismatch),
		lkerr.IsKind(err, lkerr.KindUnknownAlgorithm),
		lkerr.IsKind(err, lkerr.KindUnexpectedEndOfInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
