// Package params holds compile-time matcher configuration: the constants the
// order and settlement invariants are checked against, plus the handful of
// knobs that are legitimately environment-specific (buffer sizing, log path).
package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// PriceConstant is the fixed-point denominator for all price calculations.
// price expresses priceAsset per amountAsset, scaled by this constant.
const PriceConstant uint64 = 100_000_000 // 10^8

// Limits bounds the values the order model will accept. These mirror the
// admission checks behind OrderRejected and are never relaxed per-pair.
type Limits struct {
	MaxLiveTime time.Duration // expiration - timestamp must not exceed this
	MaxAmount   uint64        // order amount must stay strictly below this
	MaxPrice    uint64        // order price must not exceed this
}

// Fees are the inputs the matcher (not this core) decides on when
// constructing a settlement transaction; the core only apportions them.
type Fees struct {
	// NodeFee is what the node keeps out of the combined matcher fee when
	// building an exchange transaction (ExchangeTransaction.fee, §4.5).
	NodeFee uint64
}

// Actor tunes the single-threaded order-book actor described in §5.
type Actor struct {
	// EventBufferSize bounds the event channel between the book actor and
	// its consumer. A full buffer stalls the submission intake queue, never
	// the book itself.
	EventBufferSize int
}

type Config struct {
	Limits Limits
	Fees   Fees
	Actor  Actor
}

func Default() Config {
	return Config{
		Limits: Limits{
			MaxLiveTime: 30 * 24 * time.Hour,
			MaxAmount:   1 << 53,
			MaxPrice:    1 << 53,
		},
		Fees: Fees{
			NodeFee: 0,
		},
		Actor: Actor{
			EventBufferSize: 1024,
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and the
// environment. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("MATCHER_MAX_LIVE_TIME_MS"); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Limits.MaxLiveTime = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("MATCHER_MAX_AMOUNT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Limits.MaxAmount = n
		}
	}
	if v := os.Getenv("MATCHER_MAX_PRICE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Limits.MaxPrice = n
		}
	}
	if v := os.Getenv("MATCHER_NODE_FEE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Fees.NodeFee = n
		}
	}
	if v := os.Getenv("MATCHER_EVENT_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Actor.EventBufferSize = n
		}
	}

	return cfg
}
