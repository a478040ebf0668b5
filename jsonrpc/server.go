package jsonrpc

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strconv"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"provault/common"
	"provault/errors"
	"provault/events"
	"provault/exception"
	"provault/interfaces"
	"provault/jsonx"
	"provault/logx"
	"provault/types"
	"provault/vault"
)

// --- Error type used by handlers ---

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func toJRPC2Error(e *rpcError) error {
	if e == nil {
		return nil
	}
	var vaultError errors.VaultError
	err := jsonx.Unmarshal([]byte(e.Message), &vaultError)
	if err == nil && vaultError.Code != "" {
		return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", vaultError.Message).WithData(vaultError)
	}
	return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", e.Message)
}

// --- Params/Results ---

// envelopeParams carries the signed request envelope every mutating
// operation requires
type envelopeParams struct {
	SignerPubkey string `json:"signer_pubkey"`
	Nonce        uint64 `json:"nonce"`
	Timestamp    uint64 `json:"timestamp"`
	Signature    string `json:"signature"`
}

type initMasterParams struct {
	Admin    string `json:"admin"`
	Operator string `json:"operator"`
	envelopeParams
}

type initTokenAccountParams struct {
	TokenMint string `json:"token_mint"`
	envelopeParams
}

type amountParams struct {
	Amount string `json:"amount"`
	envelopeParams
}

type sendWithdrawParams struct {
	Amount   string `json:"amount"`
	Receiver string `json:"receiver"`
	envelopeParams
}

type setOperatorParams struct {
	NewOperator string `json:"new_operator"`
	envelopeParams
}

type setAdminParams struct {
	NewAdmin string `json:"new_admin"`
	envelopeParams
}

type createTokenAccountParams struct {
	TokenMint string `json:"token_mint"`
	envelopeParams
}

type opResponse struct {
	Ok bool `json:"ok"`
}

type initTokenAccountResponse struct {
	Ok           bool   `json:"ok"`
	TokenAccount string `json:"token_account"`
}

type eventData struct {
	Seq    uint64 `json:"seq"`
	Type   string `json:"type"`
	User   string `json:"user"`
	Holder string `json:"holder"`
	Amount string `json:"amount"`
	Time   int64  `json:"time"`
}

type balanceOpResponse struct {
	Ok    bool       `json:"ok"`
	Event *eventData `json:"event"`
}

type getMasterResponse struct {
	MasterAddress    string `json:"master_address"`
	NativeBalance    string `json:"native_balance"`
	TokenBalance     string `json:"token_balance"`
	TokenAccount     string `json:"token_account,omitempty"`
	LastWithdrawTime int64  `json:"last_withdraw_time"`
	Admin            string `json:"admin"`
	Operator         string `json:"operator"`
	Reserve          string `json:"reserve"`
}

type getEventsRequest struct {
	FromSeq uint64 `json:"from_seq"`
	Limit   int    `json:"limit"`
}

type getEventsResponse struct {
	Events  []eventData `json:"events"`
	NextSeq uint64      `json:"next_seq"`
}

type getAccountRequest struct {
	Address string `json:"address"`
}

type getAccountResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type getCurrentNonceRequest struct {
	Address string `json:"address"`
}

type getCurrentNonceResponse struct {
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
}

type getMintRequest struct {
	Address string `json:"address"`
}

type getMintResponse struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
	Supply   string `json:"supply"`
}

type getTokenAccountRequest struct {
	Address string `json:"address,omitempty"`
	Mint    string `json:"mint,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

type getTokenAccountResponse struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
}

type createTokenAccountResponse struct {
	Ok      bool   `json:"ok"`
	Address string `json:"address"`
}

type healthCheckResponse struct {
	Status string `json:"status"`
}

// --- Server ---

type Server struct {
	addr       string
	vaultSvc   interfaces.VaultService
	tokenSvc   interfaces.TokenService
	accounts   interfaces.AccountReader
	eventSvc   interfaces.EventService
	corsConfig CORSConfig
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(addr string, vaultSvc interfaces.VaultService, tokenSvc interfaces.TokenService, accounts interfaces.AccountReader, eventSvc interfaces.EventService) *Server {
	return &Server{
		addr:     addr,
		vaultSvc: vaultSvc,
		tokenSvc: tokenSvc,
		accounts: accounts,
		eventSvc: eventSvc,
		corsConfig: CORSConfig{
			AllowedOrigins: []string{},
			AllowedMethods: []string{},
			AllowedHeaders: []string{},
			MaxAge:         0,
		},
	}
}

func (s *Server) Start() {
	methods := s.buildMethodMap()
	jh := jhttp.NewBridge(methods, &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		jh.ServeHTTP(w, r)
	})

	http.Handle("/", h)
	exception.SafeGoWithPanic("jsonrpc-server", func() {
		if err := http.ListenAndServe(s.addr, nil); err != nil {
			logx.Error("JSONRPC", "Server stopped: ", err)
		}
	})
	logx.Info("JSONRPC", "Server listening on ", s.addr)
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		"vault.initmaster": handler.New(func(ctx context.Context, p initMasterParams) (*opResponse, error) {
			res, err := s.rpcInitMaster(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.inittokenaccount": handler.New(func(ctx context.Context, p initTokenAccountParams) (*initTokenAccountResponse, error) {
			res, err := s.rpcInitTokenAccount(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.depositnative": handler.New(func(ctx context.Context, p amountParams) (*balanceOpResponse, error) {
			res, err := s.rpcBalanceOp("vault.depositnative", p, s.vaultSvc.DepositNative)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.deposittoken": handler.New(func(ctx context.Context, p amountParams) (*balanceOpResponse, error) {
			res, err := s.rpcBalanceOp("vault.deposittoken", p, s.vaultSvc.DepositToken)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.withdrawnative": handler.New(func(ctx context.Context, p amountParams) (*balanceOpResponse, error) {
			res, err := s.rpcBalanceOp("vault.withdrawnative", p, s.vaultSvc.WithdrawNative)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.withdrawtoken": handler.New(func(ctx context.Context, p amountParams) (*balanceOpResponse, error) {
			res, err := s.rpcBalanceOp("vault.withdrawtoken", p, s.vaultSvc.WithdrawToken)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.sendwithdrawnative": handler.New(func(ctx context.Context, p sendWithdrawParams) (*balanceOpResponse, error) {
			res, err := s.rpcSendWithdraw("vault.sendwithdrawnative", p, s.vaultSvc.SendWithdrawNative)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.sendwithdrawtoken": handler.New(func(ctx context.Context, p sendWithdrawParams) (*balanceOpResponse, error) {
			res, err := s.rpcSendWithdraw("vault.sendwithdrawtoken", p, s.vaultSvc.SendWithdrawToken)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.setoperator": handler.New(func(ctx context.Context, p setOperatorParams) (*opResponse, error) {
			res, err := s.rpcSetOperator(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.setadmin": handler.New(func(ctx context.Context, p setAdminParams) (*opResponse, error) {
			res, err := s.rpcSetAdmin(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.getmaster": handler.New(func(ctx context.Context) (*getMasterResponse, error) {
			res, err := s.rpcGetMaster()
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"vault.getevents": handler.New(func(ctx context.Context, p getEventsRequest) (*getEventsResponse, error) {
			res, err := s.rpcGetEvents(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"account.getaccount": handler.New(func(ctx context.Context, p getAccountRequest) (*getAccountResponse, error) {
			res, err := s.rpcGetAccount(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"account.getcurrentnonce": handler.New(func(ctx context.Context, p getCurrentNonceRequest) (*getCurrentNonceResponse, error) {
			res, err := s.rpcGetCurrentNonce(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"token.getmint": handler.New(func(ctx context.Context, p getMintRequest) (*getMintResponse, error) {
			res, err := s.rpcGetMint(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"token.getaccount": handler.New(func(ctx context.Context, p getTokenAccountRequest) (*getTokenAccountResponse, error) {
			res, err := s.rpcGetTokenAccount(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"token.createaccount": handler.New(func(ctx context.Context, p createTokenAccountParams) (*createTokenAccountResponse, error) {
			res, err := s.rpcCreateTokenAccount(p)
			if err != nil {
				return nil, toJRPC2Error(err)
			}
			return res, nil
		}),
		"health.check": handler.New(func(ctx context.Context) (*healthCheckResponse, error) {
			return &healthCheckResponse{Status: "ok"}, nil
		}),
	}
}

// --- Implementations ---

// verifyEnvelope rebuilds the canonical envelope for a method and checks the
// signature, returning the verified caller.
func (s *Server) verifyEnvelope(method string, args []string, env envelopeParams) (vault.Caller, *rpcError) {
	e := &vault.Envelope{
		Method:       method,
		Args:         args,
		SignerPubkey: env.SignerPubkey,
		Nonce:        env.Nonce,
		Timestamp:    env.Timestamp,
		Signature:    env.Signature,
	}
	if !e.Verify() {
		return vault.Caller{}, &rpcError{
			Code:    -32001,
			Message: errors.NewError(errors.ErrCodeInvalidSignature, errors.ErrMsgInvalidSignature).Error(),
		}
	}
	return e.Caller(), nil
}

func (s *Server) rpcInitMaster(p initMasterParams) (*opResponse, *rpcError) {
	caller, rpcErr := s.verifyEnvelope("vault.initmaster", []string{p.Admin, p.Operator}, p.envelopeParams)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.vaultSvc.InitMaster(caller, p.Admin, p.Operator); err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &opResponse{Ok: true}, nil
}

func (s *Server) rpcInitTokenAccount(p initTokenAccountParams) (*initTokenAccountResponse, *rpcError) {
	caller, rpcErr := s.verifyEnvelope("vault.inittokenaccount", []string{p.TokenMint}, p.envelopeParams)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, err := s.vaultSvc.InitTokenAccount(caller, p.TokenMint)
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &initTokenAccountResponse{Ok: true, TokenAccount: addr}, nil
}

func (s *Server) rpcBalanceOp(method string, p amountParams, op func(vault.Caller, uint64) (*events.Record, error)) (*balanceOpResponse, *rpcError) {
	caller, rpcErr := s.verifyEnvelope(method, []string{p.Amount}, p.envelopeParams)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, err := common.ParseAmount(p.Amount)
	if err != nil {
		return nil, &rpcError{Code: -32002, Message: err.Error()}
	}
	rec, err := op(caller, amount)
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &balanceOpResponse{Ok: true, Event: toEventData(rec)}, nil
}

func (s *Server) rpcSendWithdraw(method string, p sendWithdrawParams, op func(vault.Caller, uint64, string) (*events.Record, error)) (*balanceOpResponse, *rpcError) {
	caller, rpcErr := s.verifyEnvelope(method, []string{p.Amount, p.Receiver}, p.envelopeParams)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, err := common.ParseAmount(p.Amount)
	if err != nil {
		return nil, &rpcError{Code: -32002, Message: err.Error()}
	}
	rec, err := op(caller, amount, p.Receiver)
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &balanceOpResponse{Ok: true, Event: toEventData(rec)}, nil
}

func (s *Server) rpcSetOperator(p setOperatorParams) (*opResponse, *rpcError) {
	caller, rpcErr := s.verifyEnvelope("vault.setoperator", []string{p.NewOperator}, p.envelopeParams)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.vaultSvc.SetOperator(caller, p.NewOperator); err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &opResponse{Ok: true}, nil
}

func (s *Server) rpcSetAdmin(p setAdminParams) (*opResponse, *rpcError) {
	caller, rpcErr := s.verifyEnvelope("vault.setadmin", []string{p.NewAdmin}, p.envelopeParams)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.vaultSvc.SetAdmin(caller, p.NewAdmin); err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &opResponse{Ok: true}, nil
}

func (s *Server) rpcGetMaster() (*getMasterResponse, *rpcError) {
	rec, err := s.vaultSvc.GetMaster()
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &getMasterResponse{
		MasterAddress:    s.vaultSvc.MasterAddress(),
		NativeBalance:    common.FormatAmount(rec.NativeBalance),
		TokenBalance:     common.FormatAmount(rec.TokenBalance),
		TokenAccount:     rec.TokenAccount,
		LastWithdrawTime: rec.LastWithdrawTime,
		Admin:            rec.Admin,
		Operator:         rec.Operator,
		Reserve:          common.FormatAmount(s.vaultSvc.Reserve()),
	}, nil
}

func (s *Server) rpcGetEvents(p getEventsRequest) (*getEventsResponse, *rpcError) {
	limit := p.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	records, err := s.eventSvc.GetEvents(p.FromSeq, limit)
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	nextSeq, err := s.eventSvc.NextSeq()
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	out := make([]eventData, 0, len(records))
	for _, rec := range records {
		out = append(out, *toEventData(rec))
	}
	return &getEventsResponse{Events: out, NextSeq: nextSeq}, nil
}

func (s *Server) rpcGetAccount(p getAccountRequest) (*getAccountResponse, *rpcError) {
	acc, err := s.accounts.GetByAddr(p.Address)
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	if acc == nil {
		return nil, &rpcError{
			Code:    -32004,
			Message: errors.NewError(errors.ErrCodeAccountNotFound, errors.ErrMsgAccountNotFound).Error(),
		}
	}
	return &getAccountResponse{
		Address: acc.Address,
		Balance: common.FormatAmount(acc.Balance),
		Nonce:   acc.Nonce,
	}, nil
}

func (s *Server) rpcGetCurrentNonce(p getCurrentNonceRequest) (*getCurrentNonceResponse, *rpcError) {
	acc, err := s.accounts.GetByAddr(p.Address)
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	if acc == nil {
		return nil, &rpcError{
			Code:    -32004,
			Message: errors.NewError(errors.ErrCodeAccountNotFound, errors.ErrMsgAccountNotFound).Error(),
		}
	}
	return &getCurrentNonceResponse{Address: acc.Address, Nonce: acc.Nonce}, nil
}

func (s *Server) rpcGetMint(p getMintRequest) (*getMintResponse, *rpcError) {
	mint, err := s.tokenSvc.GetMint(p.Address)
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &getMintResponse{
		Address:  mint.Address,
		Symbol:   mint.Symbol,
		Decimals: mint.Decimals,
		Supply:   common.FormatAmount(mint.Supply),
	}, nil
}

func (s *Server) rpcGetTokenAccount(p getTokenAccountRequest) (*getTokenAccountResponse, *rpcError) {
	var (
		account *types.TokenAccount
		err     error
	)
	switch {
	case p.Address != "":
		account, err = s.tokenSvc.GetAccount(p.Address)
	case p.Mint != "" && p.Owner != "":
		account, err = s.tokenSvc.GetAccountByOwner(p.Mint, p.Owner)
	default:
		return nil, &rpcError{
			Code:    -32002,
			Message: errors.NewError(errors.ErrCodeInvalidAddress, "either address or mint+owner is required").Error(),
		}
	}
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &getTokenAccountResponse{
		Address: account.Address,
		Mint:    account.Mint,
		Owner:   account.Owner,
		Balance: common.FormatAmount(account.Balance),
	}, nil
}

func (s *Server) rpcCreateTokenAccount(p createTokenAccountParams) (*createTokenAccountResponse, *rpcError) {
	caller, rpcErr := s.verifyEnvelope("token.createaccount", []string{p.TokenMint}, p.envelopeParams)
	if rpcErr != nil {
		return nil, rpcErr
	}
	account, err := s.tokenSvc.CreateAccount(p.TokenMint, caller.Address)
	if err != nil {
		return nil, &rpcError{Code: -32000, Message: err.Error()}
	}
	return &createTokenAccountResponse{Ok: true, Address: account.Address}, nil
}

// --- Helpers ---

func toEventData(rec *events.Record) *eventData {
	if rec == nil {
		return nil
	}
	return &eventData{
		Seq:    rec.Seq,
		Type:   string(rec.Type),
		User:   rec.User,
		Holder: rec.Holder,
		Amount: common.FormatAmount(rec.Amount),
		Time:   rec.Time,
	}
}

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	// Set allowed origins
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			// Check if the request origin is in the allowed list
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}

	// Set allowed methods
	if len(s.corsConfig.AllowedMethods) > 0 {
		methods := strings.Join(s.corsConfig.AllowedMethods, ", ")
		w.Header().Set("Access-Control-Allow-Methods", methods)
	}

	// Set allowed headers
	if len(s.corsConfig.AllowedHeaders) > 0 {
		headers := strings.Join(s.corsConfig.AllowedHeaders, ", ")
		w.Header().Set("Access-Control-Allow-Headers", headers)
	}

	// Set max age
	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", s.corsConfig.MaxAge))
	}
}

// --- Env helpers ---

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	methods := os.Getenv("CORS_ALLOWED_METHODS")
	headers := os.Getenv("CORS_ALLOWED_HEADERS")
	maxAgeStr := os.Getenv("CORS_MAX_AGE")

	var maxAge int
	if maxAgeStr != "" {
		if v, err := strconv.Atoi(maxAgeStr); err == nil {
			maxAge = v
		}
	}

	var allowedOrigins, allowedMethods, allowedHeaders []string
	if origins != "" {
		allowedOrigins = splitAndTrim(origins)
	}
	if methods != "" {
		allowedMethods = splitAndTrim(methods)
	}
	if headers != "" {
		allowedHeaders = splitAndTrim(headers)
	}

	provided := len(allowedOrigins) > 0 || len(allowedMethods) > 0 || len(allowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}

	return CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: allowedMethods,
		AllowedHeaders: allowedHeaders,
		MaxAge:         maxAge,
	}, true
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
