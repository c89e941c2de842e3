package oracle

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/justicantus/mediagate/common/logger"
	"github.com/justicantus/mediagate/common/signature"
)

// Minimal ABI surface of the Platform contract the gateway consumes.
const platformABI = `[
	{"name":"getEncryptionKey","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"signature","type":"bytes"}],"outputs":[{"name":"","type":"string"}]},
	{"name":"isActiveSubscriber","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"getArtistId","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

const keyLen = 32

// ContractCaller is the slice of the Ethereum client the Platform
// oracle needs. *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Platform talks to the on-chain Platform contract. It holds the
// encryptor identity's private key so it can self-sign key-release
// requests; the key itself never leaves the process.
type Platform struct {
	caller   ContractCaller
	abi      abi.ABI
	contract common.Address
	key      *ecdsa.PrivateKey
	identity common.Address
	timeout  time.Duration
	log      *logger.Logger
}

// NewPlatform builds the Platform oracle client.
func NewPlatform(caller ContractCaller, contract common.Address, encryptorKey *ecdsa.PrivateKey, timeout time.Duration, log *logger.Logger) (*Platform, error) {
	parsed, err := abi.JSON(strings.NewReader(platformABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse platform ABI: %w", err)
	}

	return &Platform{
		caller:   caller,
		abi:      parsed,
		contract: contract,
		key:      encryptorKey,
		identity: crypto.PubkeyToAddress(encryptorKey.PublicKey),
		timeout:  timeout,
		log:      log,
	}, nil
}

// Identity returns the encryptor account address derived from the key.
func (p *Platform) Identity() common.Address {
	return p.identity
}

// ReleaseKey implements the signed key-release protocol: the service
// presents its own address and a signature over that address, and the
// contract returns the hex-encoded symmetric key if the address is a
// registered encryptor.
func (p *Platform) ReleaseKey(ctx context.Context) ([]byte, error) {
	sig, err := signature.Sign(p.key, p.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	out, err := p.call(ctx, "getEncryptionKey", p.identity, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
	}

	results, err := p.abi.Unpack("getEncryptionKey", out)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack: %v", ErrKeyUnavailable, err)
	}
	hexKey, ok := results[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected return type", ErrKeyUnavailable)
	}

	key, err := hex.DecodeString(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed key hex", ErrKeyUnavailable)
	}
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", ErrKeyUnavailable, len(key), keyLen)
	}

	return key, nil
}

// Authorize evaluates the two entitlement predicates, short-circuiting
// on an active subscription.
func (p *Platform) Authorize(ctx context.Context, account common.Address) (bool, error) {
	subscriber, err := p.isActiveSubscriber(ctx, account)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrAccessCheckFailed, err)
	}
	if subscriber {
		return true, nil
	}

	artistID, err := p.getArtistId(ctx, account)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrAccessCheckFailed, err)
	}
	return artistID.Sign() != 0, nil
}

func (p *Platform) isActiveSubscriber(ctx context.Context, account common.Address) (bool, error) {
	out, err := p.call(ctx, "isActiveSubscriber", account)
	if err != nil {
		return false, err
	}
	results, err := p.abi.Unpack("isActiveSubscriber", out)
	if err != nil {
		return false, fmt.Errorf("unpack: %w", err)
	}
	active, ok := results[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected return type")
	}
	return active, nil
}

func (p *Platform) getArtistId(ctx context.Context, account common.Address) (*big.Int, error) {
	out, err := p.call(ctx, "getArtistId", account)
	if err != nil {
		return nil, err
	}
	results, err := p.abi.Unpack("getArtistId", out)
	if err != nil {
		return nil, fmt.Errorf("unpack: %w", err)
	}
	id, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected return type")
	}
	return id, nil
}

func (p *Platform) call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	data, err := p.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &p.contract,
		Data: data,
	}, nil)
	if err != nil {
		p.log.Error("oracle call failed", "method", method, "error", err)
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	return out, nil
}
