package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"provault/logx"
)

type Asset string

const (
	AssetNative Asset = "native"
	AssetToken  Asset = "token"
)

type WithdrawKind string

const (
	WithdrawKindAdmin    WithdrawKind = "admin"
	WithdrawKindOperator WithdrawKind = "operator"
)

type OpRejectedReason string

var (
	OpUnauthorized        OpRejectedReason = "unauthorized"
	OpNotEnoughBalance    OpRejectedReason = "not_enough_balance"
	OpMathOverflow        OpRejectedReason = "math_underflow_or_overflow"
	OpInvalidNonce        OpRejectedReason = "invalid_nonce"
	OpInvalidSignature    OpRejectedReason = "invalid_signature"
	OpInsufficientFunds   OpRejectedReason = "insufficient_funds"
	OpMasterNotInit       OpRejectedReason = "master_not_initialized"
	OpTokenAccountMissing OpRejectedReason = "token_account_not_initialized"
	OpRejectedUnknown     OpRejectedReason = "other"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds prometheus.Gauge
	depositCount      *prometheus.CounterVec
	withdrawCount     *prometheus.CounterVec
	rejectedOpCount   *prometheus.CounterVec
	nativeBalance     prometheus.Gauge
	tokenBalance      prometheus.Gauge
	eventSubscribers  prometheus.Gauge
	panicCount        prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "provault_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		depositCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provault_node_deposit_count",
				Help: "The total number of accepted deposits",
			},
			[]string{"asset"},
		),
		withdrawCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provault_node_withdraw_count",
				Help: "The total number of accepted withdrawals",
			},
			[]string{"asset", "kind"},
		),
		rejectedOpCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provault_node_rejected_op_count",
				Help: "The total number of rejected operations",
			},
			[]string{"reason"},
		),
		nativeBalance: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "provault_node_native_balance",
				Help: "The vault native balance counter, excluding the reserve",
			},
		),
		tokenBalance: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "provault_node_token_balance",
				Help: "The vault token balance counter",
			},
		),
		eventSubscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "provault_node_event_subscribers",
				Help: "The number of live event bus subscribers",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "provault_node_panic_count",
				Help: "The total number of recovered panics",
			},
		),
	}
}

var nodeMetrics *nodePromMetrics

// InitMetrics initialize metrics for node but not expose to api yet
func InitMetrics() {
	nodeMetrics = newNodePromMetrics()
	nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

// Helpers are nil-safe so library code can run without InitMetrics (tests, CLI)

func IncreaseDepositCount(asset Asset) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.depositCount.With(prometheus.Labels{"asset": string(asset)}).Inc()
}

func IncreaseWithdrawCount(asset Asset, kind WithdrawKind) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.withdrawCount.With(prometheus.Labels{
		"asset": string(asset),
		"kind":  string(kind),
	}).Inc()
}

func RecordRejectedOp(reason OpRejectedReason) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.rejectedOpCount.With(prometheus.Labels{"reason": string(reason)}).Inc()
}

func SetNativeBalance(balance uint64) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.nativeBalance.Set(float64(balance))
}

func SetTokenBalance(balance uint64) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.tokenBalance.Set(float64(balance))
}

func SetEventSubscribers(count int) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.eventSubscribers.Set(float64(count))
}

func IncreasePanicCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.panicCount.Inc()
}
