// Package exchange is the closed set of supported exchange variants and
// the dispatch table that maps each to its default response validator
// (§9 Design Notes: "a closed set of variants plus a dispatch table"
// rather than virtual-method polymorphism per exchange). Sessions are
// opened through each exchange subpackage's own NewSession.
//
// This package is deliberately thin: it imports only the root package
// and internal/validators, which is all CreateResponseValidator needs to
// dispatch on an ID string.
package exchange

import (
	"fmt"

	"github.com/solheim-labs/exaction"
	"github.com/solheim-labs/exaction/internal/validators"
	"github.com/solheim-labs/exaction/pkg/errors"
)

// ID identifies one of the six supported exchanges. It is a closed set:
// every valid value is named below, and CreateResponseValidator rejects
// anything else.
type ID string

const (
	Binance   ID = "binance"
	Bitbank   ID = "bitbank"
	BitFlyer  ID = "bitflyer"
	Coincheck ID = "coincheck"
	GMOCoin   ID = "gmocoin"
	Upbit     ID = "upbit"
)

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// CreateResponseValidator returns the default response validator for id,
// ready to register as a session callback. Each validator implements
// §4.9's three-step algorithm against that exchange's own error
// envelope shape.
func CreateResponseValidator(id ID) (exaction.Callback, error) {
	switch id {
	case Binance:
		return validators.Binance{}, nil
	case Bitbank:
		return validators.Bitbank{}, nil
	case BitFlyer:
		return validators.BitFlyer{}, nil
	case Coincheck:
		return validators.Coincheck{}, nil
	case GMOCoin:
		return validators.GMOCoin{}, nil
	case Upbit:
		return validators.Upbit{}, nil
	default:
		return nil, errors.NewValidationError("exchange", id, fmt.Sprintf("unsupported exchange: %s", id))
	}
}
