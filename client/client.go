package client

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	"provault/common"
	"provault/vault"
)

type Config struct {
	Endpoint string
}

// VaultClient is a JSON-RPC client for a custody node. Signed operations
// take the caller's ed25519 seed, fetch the current nonce from the node and
// build the canonical envelope themselves.
type VaultClient struct {
	cfg Config
	ch  *jhttp.Channel
	rpc *jrpc2.Client
}

func NewClient(cfg Config) (*VaultClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("client: endpoint is required")
	}
	ch := jhttp.NewChannel(cfg.Endpoint, nil)
	return &VaultClient{
		cfg: cfg,
		ch:  ch,
		rpc: jrpc2.NewClient(ch, nil),
	}, nil
}

// Close closes the underlying HTTP channel
func (c *VaultClient) Close() error {
	if c.rpc != nil {
		return c.rpc.Close()
	}
	return nil
}

func (c *VaultClient) CheckHealth(ctx context.Context) (*HealthCheckResponse, error) {
	var res HealthCheckResponse
	if err := c.rpc.CallResult(ctx, "health.check", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Queries ---

func (c *VaultClient) GetMaster(ctx context.Context) (*GetMasterResponse, error) {
	var res GetMasterResponse
	if err := c.rpc.CallResult(ctx, "vault.getmaster", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) GetEvents(ctx context.Context, fromSeq uint64, limit int) (*GetEventsResponse, error) {
	var res GetEventsResponse
	req := GetEventsRequest{FromSeq: fromSeq, Limit: limit}
	if err := c.rpc.CallResult(ctx, "vault.getevents", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) GetAccount(ctx context.Context, addr string) (*GetAccountResponse, error) {
	var res GetAccountResponse
	if err := c.rpc.CallResult(ctx, "account.getaccount", map[string]string{"address": addr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) GetCurrentNonce(ctx context.Context, addr string) (*GetCurrentNonceResponse, error) {
	var res GetCurrentNonceResponse
	if err := c.rpc.CallResult(ctx, "account.getcurrentnonce", map[string]string{"address": addr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) GetMint(ctx context.Context, addr string) (*GetMintResponse, error) {
	var res GetMintResponse
	if err := c.rpc.CallResult(ctx, "token.getmint", map[string]string{"address": addr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) GetTokenAccount(ctx context.Context, addr string) (*GetTokenAccountResponse, error) {
	var res GetTokenAccountResponse
	if err := c.rpc.CallResult(ctx, "token.getaccount", map[string]string{"address": addr}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) GetTokenAccountByOwner(ctx context.Context, mint, owner string) (*GetTokenAccountResponse, error) {
	var res GetTokenAccountResponse
	req := map[string]string{"mint": mint, "owner": owner}
	if err := c.rpc.CallResult(ctx, "token.getaccount", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Signed operations ---

func (c *VaultClient) InitMaster(ctx context.Context, seed []byte, admin, operator string) (*OpResponse, error) {
	if !common.IsValidAddress(admin) || !common.IsValidAddress(operator) {
		return nil, ErrInvalidAddress
	}
	env, err := c.signedEnvelope(ctx, seed, "vault.initmaster", []string{admin, operator})
	if err != nil {
		return nil, err
	}
	req := InitMasterRequest{Admin: admin, Operator: operator, SignedFields: env}
	var res OpResponse
	if err := c.rpc.CallResult(ctx, "vault.initmaster", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) InitTokenAccount(ctx context.Context, seed []byte, mint string) (*InitTokenAccountResponse, error) {
	env, err := c.signedEnvelope(ctx, seed, "vault.inittokenaccount", []string{mint})
	if err != nil {
		return nil, err
	}
	req := InitTokenAccountRequest{TokenMint: mint, SignedFields: env}
	var res InitTokenAccountResponse
	if err := c.rpc.CallResult(ctx, "vault.inittokenaccount", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) DepositNative(ctx context.Context, seed []byte, amount string) (*BalanceOpResponse, error) {
	return c.amountOp(ctx, seed, "vault.depositnative", amount)
}

func (c *VaultClient) DepositToken(ctx context.Context, seed []byte, amount string) (*BalanceOpResponse, error) {
	return c.amountOp(ctx, seed, "vault.deposittoken", amount)
}

func (c *VaultClient) WithdrawNative(ctx context.Context, seed []byte, amount string) (*BalanceOpResponse, error) {
	return c.amountOp(ctx, seed, "vault.withdrawnative", amount)
}

func (c *VaultClient) WithdrawToken(ctx context.Context, seed []byte, amount string) (*BalanceOpResponse, error) {
	return c.amountOp(ctx, seed, "vault.withdrawtoken", amount)
}

func (c *VaultClient) SendWithdrawNative(ctx context.Context, seed []byte, amount, receiver string) (*BalanceOpResponse, error) {
	return c.sendWithdrawOp(ctx, seed, "vault.sendwithdrawnative", amount, receiver)
}

func (c *VaultClient) SendWithdrawToken(ctx context.Context, seed []byte, amount, receiver string) (*BalanceOpResponse, error) {
	return c.sendWithdrawOp(ctx, seed, "vault.sendwithdrawtoken", amount, receiver)
}

func (c *VaultClient) SetOperator(ctx context.Context, seed []byte, newOperator string) (*OpResponse, error) {
	if !common.IsValidAddress(newOperator) {
		return nil, ErrInvalidAddress
	}
	env, err := c.signedEnvelope(ctx, seed, "vault.setoperator", []string{newOperator})
	if err != nil {
		return nil, err
	}
	req := SetOperatorRequest{NewOperator: newOperator, SignedFields: env}
	var res OpResponse
	if err := c.rpc.CallResult(ctx, "vault.setoperator", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) SetAdmin(ctx context.Context, seed []byte, newAdmin string) (*OpResponse, error) {
	if !common.IsValidAddress(newAdmin) {
		return nil, ErrInvalidAddress
	}
	env, err := c.signedEnvelope(ctx, seed, "vault.setadmin", []string{newAdmin})
	if err != nil {
		return nil, err
	}
	req := SetAdminRequest{NewAdmin: newAdmin, SignedFields: env}
	var res OpResponse
	if err := c.rpc.CallResult(ctx, "vault.setadmin", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) CreateTokenAccount(ctx context.Context, seed []byte, mint string) (*CreateTokenAccountResponse, error) {
	env, err := c.signedEnvelope(ctx, seed, "token.createaccount", []string{mint})
	if err != nil {
		return nil, err
	}
	req := CreateTokenAccountRequest{TokenMint: mint, SignedFields: env}
	var res CreateTokenAccountResponse
	if err := c.rpc.CallResult(ctx, "token.createaccount", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Internals ---

func (c *VaultClient) amountOp(ctx context.Context, seed []byte, method, amount string) (*BalanceOpResponse, error) {
	if _, err := common.ParseAmount(amount); err != nil {
		return nil, ErrInvalidAmount
	}
	env, err := c.signedEnvelope(ctx, seed, method, []string{amount})
	if err != nil {
		return nil, err
	}
	req := AmountRequest{Amount: amount, SignedFields: env}
	var res BalanceOpResponse
	if err := c.rpc.CallResult(ctx, method, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *VaultClient) sendWithdrawOp(ctx context.Context, seed []byte, method, amount, receiver string) (*BalanceOpResponse, error) {
	if _, err := common.ParseAmount(amount); err != nil {
		return nil, ErrInvalidAmount
	}
	if !common.IsValidAddress(receiver) {
		return nil, ErrInvalidAddress
	}
	env, err := c.signedEnvelope(ctx, seed, method, []string{amount, receiver})
	if err != nil {
		return nil, err
	}
	req := SendWithdrawRequest{Amount: amount, Receiver: receiver, SignedFields: env}
	var res BalanceOpResponse
	if err := c.rpc.CallResult(ctx, method, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// signedEnvelope fetches the caller's current nonce and signs the canonical
// payload for a method with the given seed.
func (c *VaultClient) signedEnvelope(ctx context.Context, seed []byte, method string, args []string) (SignedFields, error) {
	if len(seed) != ed25519.SeedSize {
		return SignedFields{}, vault.ErrUnsupportedKey
	}
	privKey := ed25519.NewKeyFromSeed(seed)
	addr := common.AddressFromPubKey(privKey.Public().(ed25519.PublicKey))

	nonceRes, err := c.GetCurrentNonce(ctx, addr)
	if err != nil {
		return SignedFields{}, fmt.Errorf("fetch nonce for %s: %w", addr, err)
	}

	env := &vault.Envelope{
		Method:    method,
		Args:      args,
		Nonce:     nonceRes.Nonce + 1,
		Timestamp: uint64(time.Now().Unix()),
	}
	if err := vault.Sign(env, seed); err != nil {
		return SignedFields{}, err
	}
	return SignedFields{
		SignerPubkey: env.SignerPubkey,
		Nonce:        env.Nonce,
		Timestamp:    env.Timestamp,
		Signature:    env.Signature,
	}, nil
}
