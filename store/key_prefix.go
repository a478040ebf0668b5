package store

// Declare database key prefix for objects
const (
	PrefixAccount      = "account:"
	PrefixTokenAccount = "token_account:"
	PrefixMint         = "mint:"

	PrefixEvent          = "event:"
	EventMetaKeyNextSeq  = "event_meta:next_seq"
	MasterKeyRecord      = "master:record"
	GenesisKeyInitialized = "genesis:initialized"
)
