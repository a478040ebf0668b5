package client

import (
	goerrors "errors"
)

var (
	ErrInvalidAddress = goerrors.New("client: invalid address format")
	ErrInvalidAmount  = goerrors.New("client: amount must be > 0")
)

// SignedFields is the envelope portion every mutating request carries
type SignedFields struct {
	SignerPubkey string `json:"signer_pubkey"`
	Nonce        uint64 `json:"nonce"`
	Timestamp    uint64 `json:"timestamp"`
	Signature    string `json:"signature"`
}

type InitMasterRequest struct {
	Admin    string `json:"admin"`
	Operator string `json:"operator"`
	SignedFields
}

type InitTokenAccountRequest struct {
	TokenMint string `json:"token_mint"`
	SignedFields
}

type AmountRequest struct {
	Amount string `json:"amount"`
	SignedFields
}

type SendWithdrawRequest struct {
	Amount   string `json:"amount"`
	Receiver string `json:"receiver"`
	SignedFields
}

type SetOperatorRequest struct {
	NewOperator string `json:"new_operator"`
	SignedFields
}

type SetAdminRequest struct {
	NewAdmin string `json:"new_admin"`
	SignedFields
}

type CreateTokenAccountRequest struct {
	TokenMint string `json:"token_mint"`
	SignedFields
}

type OpResponse struct {
	Ok bool `json:"ok"`
}

type InitTokenAccountResponse struct {
	Ok           bool   `json:"ok"`
	TokenAccount string `json:"token_account"`
}

type EventData struct {
	Seq    uint64 `json:"seq"`
	Type   string `json:"type"`
	User   string `json:"user"`
	Holder string `json:"holder"`
	Amount string `json:"amount"`
	Time   int64  `json:"time"`
}

type BalanceOpResponse struct {
	Ok    bool       `json:"ok"`
	Event *EventData `json:"event"`
}

type GetMasterResponse struct {
	MasterAddress    string `json:"master_address"`
	NativeBalance    string `json:"native_balance"`
	TokenBalance     string `json:"token_balance"`
	TokenAccount     string `json:"token_account,omitempty"`
	LastWithdrawTime int64  `json:"last_withdraw_time"`
	Admin            string `json:"admin"`
	Operator         string `json:"operator"`
	Reserve          string `json:"reserve"`
}

type GetEventsRequest struct {
	FromSeq uint64 `json:"from_seq"`
	Limit   int    `json:"limit"`
}

type GetEventsResponse struct {
	Events  []EventData `json:"events"`
	NextSeq uint64      `json:"next_seq"`
}

type GetAccountResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

type GetCurrentNonceResponse struct {
	Address string `json:"address"`
	Nonce   uint64 `json:"nonce"`
}

type GetMintResponse struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
	Supply   string `json:"supply"`
}

type GetTokenAccountResponse struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
}

type CreateTokenAccountResponse struct {
	Ok      bool   `json:"ok"`
	Address string `json:"address"`
}

type HealthCheckResponse struct {
	Status string `json:"status"`
}
