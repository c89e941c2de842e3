package oracle

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justicantus/mediagate/common/logger"
	"github.com/justicantus/mediagate/common/signature"
)

var testContract = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// fakeCaller dispatches eth_call payloads by method selector.
type fakeCaller struct {
	abi   abi.ABI
	calls map[string]int

	subscriberResult bool
	subscriberErr    error
	artistID         *big.Int
	artistErr        error
	hexKey           string
	keyErr           error

	lastKeyRequest []byte
}

func newFakeCaller(t *testing.T) *fakeCaller {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(platformABI))
	require.NoError(t, err)
	return &fakeCaller{
		abi:      parsed,
		calls:    map[string]int{},
		artistID: big.NewInt(0),
	}
}

func (f *fakeCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	selector := call.Data[:4]

	for name, method := range f.abi.Methods {
		if !bytes.Equal(method.ID, selector) {
			continue
		}
		f.calls[name]++

		switch name {
		case "isActiveSubscriber":
			if f.subscriberErr != nil {
				return nil, f.subscriberErr
			}
			return method.Outputs.Pack(f.subscriberResult)
		case "getArtistId":
			if f.artistErr != nil {
				return nil, f.artistErr
			}
			return method.Outputs.Pack(f.artistID)
		case "getEncryptionKey":
			if f.keyErr != nil {
				return nil, f.keyErr
			}
			f.lastKeyRequest = call.Data
			return method.Outputs.Pack(f.hexKey)
		}
	}
	return nil, fmt.Errorf("unknown selector %x", selector)
}

func newTestPlatform(t *testing.T, caller ContractCaller) *Platform {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	p, err := NewPlatform(caller, testContract, key, time.Second, logger.New("error", "text"))
	require.NoError(t, err)
	return p
}

func TestReleaseKey(t *testing.T) {
	caller := newFakeCaller(t)
	caller.hexKey = "0x" + strings.Repeat("ab", 32)

	p := newTestPlatform(t, caller)

	key, err := p.ReleaseKey(context.Background())
	require.NoError(t, err)

	want, _ := hex.DecodeString(strings.Repeat("ab", 32))
	assert.Equal(t, want, key)

	// The call must carry the identity's self-signed address; the
	// signature must verify against the identity.
	args, err := caller.abi.Methods["getEncryptionKey"].Inputs.Unpack(caller.lastKeyRequest[4:])
	require.NoError(t, err)
	account := args[0].(common.Address)
	sig := args[1].([]byte)
	assert.Equal(t, p.Identity(), account)
	assert.NoError(t, signature.Verify(account, sig))
}

func TestReleaseKeyWithoutHexPrefix(t *testing.T) {
	caller := newFakeCaller(t)
	caller.hexKey = strings.Repeat("cd", 32)

	p := newTestPlatform(t, caller)

	key, err := p.ReleaseKey(context.Background())
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestReleaseKeyFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeCaller)
	}{
		{"call reverts", func(f *fakeCaller) { f.keyErr = errors.New("execution reverted: NotAnEncryptor") }},
		{"malformed hex", func(f *fakeCaller) { f.hexKey = "0xnot-hex" }},
		{"wrong length", func(f *fakeCaller) { f.hexKey = "0xabcd" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := newFakeCaller(t)
			tt.setup(caller)

			p := newTestPlatform(t, caller)
			_, err := p.ReleaseKey(context.Background())
			assert.ErrorIs(t, err, ErrKeyUnavailable)
		})
	}
}

func TestAuthorizeSubscriberShortCircuits(t *testing.T) {
	caller := newFakeCaller(t)
	caller.subscriberResult = true
	// Artist lookup would fail if reached; it must not be.
	caller.artistErr = errors.New("should not be called")

	p := newTestPlatform(t, caller)

	account := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	allowed, err := p.Authorize(context.Background(), account)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, caller.calls["getArtistId"])
}

func TestAuthorizeArtistFallback(t *testing.T) {
	caller := newFakeCaller(t)
	caller.artistID = big.NewInt(7)

	p := newTestPlatform(t, caller)

	allowed, err := p.Authorize(context.Background(), common.Address{0x01})
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, caller.calls["isActiveSubscriber"])
}

func TestAuthorizeDenied(t *testing.T) {
	caller := newFakeCaller(t)

	p := newTestPlatform(t, caller)

	allowed, err := p.Authorize(context.Background(), common.Address{0x02})
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAuthorizeOracleOutage(t *testing.T) {
	caller := newFakeCaller(t)
	caller.subscriberErr = errors.New("connection refused")

	p := newTestPlatform(t, caller)

	_, err := p.Authorize(context.Background(), common.Address{0x03})
	assert.ErrorIs(t, err, ErrAccessCheckFailed)
}
