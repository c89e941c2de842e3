package service

import (
	"context"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ipfs/go-cid"

	"github.com/justicantus/mediagate/common/logger"
	"github.com/justicantus/mediagate/common/oracle"
	"github.com/justicantus/mediagate/common/secretstream"
	"github.com/justicantus/mediagate/common/signature"
	"github.com/justicantus/mediagate/common/sniff"
)

// DecryptRequest carries the raw egress query parameters.
type DecryptRequest struct {
	CID       string
	Account   string
	Signature string
}

// DecryptResult is the decrypted payload with its sniffed type.
type DecryptResult struct {
	ContentType string
	Plaintext   []byte
}

// EgressService verifies, authorizes and decrypts stored content.
type EgressService struct {
	oracle   oracle.Oracle
	store    ContentStore
	detector sniff.Detector
	log      *logger.Logger
}

// NewEgressService creates the egress pipeline
func NewEgressService(o oracle.Oracle, store ContentStore, detector sniff.Detector, log *logger.Logger) *EgressService {
	return &EgressService{
		oracle:   o,
		store:    store,
		detector: detector,
		log:      log,
	}
}

// Decrypt runs the egress flow: validate, verify the caller's
// signature, authorize, fetch, decrypt, sniff. Authorization strictly
// precedes the storage fetch so unauthorized requests cost no storage
// reads. Each stage failure maps to exactly one error class.
func (s *EgressService) Decrypt(ctx context.Context, req DecryptRequest) (*DecryptResult, error) {
	account, sig, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if err := signature.Verify(account, sig); err != nil {
		return nil, err
	}

	allowed, err := s.oracle.Authorize(ctx, account)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: account %s holds no entitlement", ErrAccessDenied, account.Hex())
	}

	scratch, cleanup, err := s.store.Fetch(ctx, req.CID)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	envelope, err := os.ReadFile(scratch)
	if err != nil {
		return nil, fmt.Errorf("reading scratch file: %w", err)
	}

	key, err := s.oracle.ReleaseKey(ctx)
	if err != nil {
		return nil, err
	}

	plaintext, err := secretstream.Open(key, envelope)
	if err != nil {
		// Full cause stays server-side; the caller learns only that
		// decryption failed.
		s.log.WithCID(req.CID).WithAccount(account.Hex()).Error("decryption failed",
			"envelope_size", len(envelope),
			"cause", err,
		)
		return nil, fmt.Errorf("%w", ErrCouldNotDecrypt)
	}

	return &DecryptResult{
		ContentType: s.detector.Detect(plaintext),
		Plaintext:   plaintext,
	}, nil
}

func (s *EgressService) validate(req DecryptRequest) (common.Address, []byte, error) {
	if req.CID == "" {
		return common.Address{}, nil, fmt.Errorf("%w: must provide CID", ErrBadRequest)
	}
	if req.Account == "" {
		return common.Address{}, nil, fmt.Errorf("%w: must provide account that requests decryption", ErrBadRequest)
	}
	if req.Signature == "" {
		return common.Address{}, nil, fmt.Errorf("%w: must provide signature", ErrBadRequest)
	}

	if _, err := cid.Decode(req.CID); err != nil {
		return common.Address{}, nil, fmt.Errorf("%w: invalid CID", ErrBadRequest)
	}

	if !common.IsHexAddress(req.Account) {
		return common.Address{}, nil, fmt.Errorf("%w: invalid account address", ErrBadRequest)
	}
	account := common.HexToAddress(req.Account)

	sig, err := hexutil.Decode(req.Signature)
	if err != nil {
		return common.Address{}, nil, signature.ErrInvalidSignature
	}

	return account, sig, nil
}
