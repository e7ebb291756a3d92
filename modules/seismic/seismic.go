// Package seismic provides high-level helpers for calling contracts on Seismic networks.
package seismic

import (
	"context"
	"fmt"

	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/SeismicSystems/seismic-go/client"
	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/crypto/signature"
	"github.com/SeismicSystems/seismic-go/types"
)

// V1 is the v1 Seismic call interface.
type V1 interface {
	// EnclavePublicKey returns the network encryption public key.
	EnclavePublicKey(ctx context.Context) ([keyexchange.PublicKeySize]byte, error)

	// Write submits an encrypted transaction and waits for its receipt.
	Write(ctx context.Context, signer signature.Signer, req *Request) (*Response, error)

	// Read executes an encrypted signed read and returns the decrypted output.
	Read(ctx context.Context, signer signature.Signer, req *Request) (*Response, error)

	// TransparentWrite submits a plain transaction and waits for its receipt.
	TransparentWrite(ctx context.Context, signer signature.Signer, req *Request) (*Response, error)

	// TransparentRead executes a plain read. The signer may be nil.
	TransparentRead(ctx context.Context, signer signature.Signer, req *Request) (*Response, error)

	// DebugWrite builds an encrypted transaction and returns it alongside its plaintext.
	//
	// The transaction is only submitted when broadcast is true.
	DebugWrite(ctx context.Context, signer signature.Signer, req *Request, broadcast bool) (*DebugWriteResult, error)

	// Call executes the request in the given mode.
	Call(ctx context.Context, mode CallMode, signer signature.Signer, req *Request) (*Response, error)
}

type v1 struct {
	rc      client.RuntimeClient
	session *client.Session
	nonces  *client.NonceManager

	logger *logging.Logger
}

func (a *v1) builder(signer signature.Signer, req *Request) *client.TransactionBuilder {
	tb := client.NewTransactionBuilder(a.rc, req.To, req.Value, req.Data).
		SetGas(req.Gas).
		SetExpiresIn(req.ExpiresIn).
		SetMessageVersion(req.MessageVersion)
	if req.GasPrice != nil {
		tb.SetGasPrice(req.GasPrice)
	}
	if signer != nil {
		tb.SetFrom(signer.Public().Address())
	}
	return tb
}

func (a *v1) shielded(ctx context.Context, signer signature.Signer, req *Request, signedRead bool) (*client.TransactionBuilder, error) {
	if signer == nil {
		return nil, fmt.Errorf("seismic: shielded calls require a signer")
	}
	tb := a.builder(signer, req).SetSignedRead(signedRead)
	if !signedRead {
		tb.SetNonceManager(a.nonces)
	}
	if err := tb.SetCallFormat(ctx, types.CallFormatEncryptedAESGCM, a.session); err != nil {
		return nil, err
	}
	if err := tb.AppendSign(ctx, signer); err != nil {
		tb.Discard()
		return nil, err
	}
	return tb, nil
}

// Implements V1.
func (a *v1) EnclavePublicKey(ctx context.Context) ([keyexchange.PublicKeySize]byte, error) {
	return a.rc.EnclavePublicKey(ctx)
}

// Implements V1.
func (a *v1) Write(ctx context.Context, signer signature.Signer, req *Request) (*Response, error) {
	if req.Debug {
		res, err := a.DebugWrite(ctx, signer, req, true)
		if err != nil {
			return nil, err
		}
		return &Response{Mode: ModeWrite, Receipt: res.Receipt, Debug: res}, nil
	}

	tb, err := a.shielded(ctx, signer, req, false)
	if err != nil {
		return nil, err
	}
	receipt, err := tb.SubmitTxWait(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{Mode: ModeWrite, Receipt: receipt}, nil
}

// Implements V1.
func (a *v1) Read(ctx context.Context, signer signature.Signer, req *Request) (*Response, error) {
	tb, err := a.shielded(ctx, signer, req, true)
	if err != nil {
		return nil, err
	}
	out, err := tb.SimulateCall(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{Mode: ModeRead, Output: out}, nil
}

// Implements V1.
func (a *v1) TransparentWrite(ctx context.Context, signer signature.Signer, req *Request) (*Response, error) {
	if signer == nil {
		return nil, fmt.Errorf("seismic: writes require a signer")
	}
	tb := a.builder(signer, req).SetNonceManager(a.nonces)
	if err := tb.AppendSign(ctx, signer); err != nil {
		tb.Discard()
		return nil, err
	}
	receipt, err := tb.SubmitTxWait(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{Mode: ModeTransparentWrite, Receipt: receipt}, nil
}

// Implements V1.
func (a *v1) TransparentRead(ctx context.Context, signer signature.Signer, req *Request) (*Response, error) {
	out, err := a.builder(signer, req).SimulateCall(ctx)
	if err != nil {
		return nil, err
	}
	return &Response{Mode: ModeTransparentRead, Output: out}, nil
}

// Implements V1.
func (a *v1) DebugWrite(ctx context.Context, signer signature.Signer, req *Request, broadcast bool) (*DebugWriteResult, error) {
	tb, err := a.shielded(ctx, signer, req, false)
	if err != nil {
		return nil, err
	}

	plain := tb.GetTransaction().Copy()
	plain.Input = append([]byte{}, req.Data...)
	res := &DebugWriteResult{
		PlaintextTx: plain,
		ShieldedTx:  tb.SignedTransaction(),
	}
	if !broadcast {
		tb.Discard()
		return res, nil
	}

	if res.Receipt, err = tb.SubmitTxWait(ctx); err != nil {
		return res, err
	}
	a.logger.Debug("debug write included",
		"hash", res.Receipt.TxHash,
		"block", res.Receipt.BlockNumber,
	)
	return res, nil
}

// Implements V1.
func (a *v1) Call(ctx context.Context, mode CallMode, signer signature.Signer, req *Request) (*Response, error) {
	switch mode {
	case ModeWrite:
		return a.Write(ctx, signer, req)
	case ModeRead:
		return a.Read(ctx, signer, req)
	case ModeTransparentWrite:
		return a.TransparentWrite(ctx, signer, req)
	case ModeTransparentRead:
		return a.TransparentRead(ctx, signer, req)
	default:
		return nil, fmt.Errorf("seismic: unsupported call mode: %s", mode)
	}
}

// NewV1 generates a V1 client helper for Seismic calls.
//
// All calls made through the helper share the given session and a nonce manager.
func NewV1(rc client.RuntimeClient, session *client.Session) V1 {
	return &v1{
		rc:      rc,
		session: session,
		nonces:  client.NewNonceManager(rc),
		logger:  logging.GetLogger("modules/seismic"),
	}
}
