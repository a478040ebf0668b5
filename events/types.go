package events

// EventType is an enum-like string type for ledger events
type EventType string

const (
	EventDeposit       EventType = "Deposit"
	EventWithdraw      EventType = "Withdraw"
	EventAdminWithdraw EventType = "AdminWithdraw"
)

// LedgerEvent represents any balance-changing event in the custody ledger.
// User is the counterparty (depositor, payout receiver, or the admin);
// Holder is the vault account whose balance moved.
type LedgerEvent interface {
	Type() EventType
	User() string
	Holder() string
	Amount() uint64
	Time() int64
}

// Deposit event when a user moves funds into the vault
type Deposit struct {
	user   string
	holder string
	amount uint64
	time   int64
}

func NewDeposit(user, holder string, amount uint64, time int64) *Deposit {
	return &Deposit{
		user:   user,
		holder: holder,
		amount: amount,
		time:   time,
	}
}

func (e *Deposit) Type() EventType {
	return EventDeposit
}

func (e *Deposit) User() string {
	return e.user
}

func (e *Deposit) Holder() string {
	return e.holder
}

func (e *Deposit) Amount() uint64 {
	return e.amount
}

func (e *Deposit) Time() int64 {
	return e.time
}

// Withdraw event when the operator dispatches a payout to a receiver
type Withdraw struct {
	user   string
	holder string
	amount uint64
	time   int64
}

func NewWithdraw(user, holder string, amount uint64, time int64) *Withdraw {
	return &Withdraw{
		user:   user,
		holder: holder,
		amount: amount,
		time:   time,
	}
}

func (e *Withdraw) Type() EventType {
	return EventWithdraw
}

func (e *Withdraw) User() string {
	return e.user
}

func (e *Withdraw) Holder() string {
	return e.holder
}

func (e *Withdraw) Amount() uint64 {
	return e.amount
}

func (e *Withdraw) Time() int64 {
	return e.time
}

// AdminWithdraw event when the admin withdraws to its own account
type AdminWithdraw struct {
	user   string
	holder string
	amount uint64
	time   int64
}

func NewAdminWithdraw(user, holder string, amount uint64, time int64) *AdminWithdraw {
	return &AdminWithdraw{
		user:   user,
		holder: holder,
		amount: amount,
		time:   time,
	}
}

func (e *AdminWithdraw) Type() EventType {
	return EventAdminWithdraw
}

func (e *AdminWithdraw) User() string {
	return e.user
}

func (e *AdminWithdraw) Holder() string {
	return e.holder
}

func (e *AdminWithdraw) Amount() uint64 {
	return e.amount
}

func (e *AdminWithdraw) Time() int64 {
	return e.time
}

// Record is the persisted form of a ledger event. Seq is a dense sequence
// number assigned at commit time so off-chain consumers can mirror state
// gap-free and in order.
type Record struct {
	Seq    uint64    `json:"seq"`
	Type   EventType `json:"type"`
	User   string    `json:"user"`
	Holder string    `json:"holder"`
	Amount uint64    `json:"amount"`
	Time   int64     `json:"time"`
}

// NewRecord captures a live event into its persisted form
func NewRecord(seq uint64, ev LedgerEvent) *Record {
	return &Record{
		Seq:    seq,
		Type:   ev.Type(),
		User:   ev.User(),
		Holder: ev.Holder(),
		Amount: ev.Amount(),
		Time:   ev.Time(),
	}
}

// Event rehydrates the typed event from a persisted record
func (r *Record) Event() LedgerEvent {
	switch r.Type {
	case EventWithdraw:
		return NewWithdraw(r.User, r.Holder, r.Amount, r.Time)
	case EventAdminWithdraw:
		return NewAdminWithdraw(r.User, r.Holder, r.Amount, r.Time)
	default:
		return NewDeposit(r.User, r.Holder, r.Amount, r.Time)
	}
}
