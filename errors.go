package treasury

import (
	"errors"
	"fmt"
)

// ErrSnapshotEmpty reports that a snapshot holds no accounts and no balances
// for the requested date. Reports computed from an empty snapshot are still
// valid (all totals zero); this sentinel exists for callers that want to
// distinguish "empty" from "small".
var ErrSnapshotEmpty = errors.New("snapshot has no accounts or balances")

// MissingRateError reports that no direct or inverse rate pair could resolve
// a conversion on or before a given date. Callers must not guess a cross rate
// through a third currency.
type MissingRateError struct {
	From, To string
	On       Date
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no exchange rate for %s/%s on or before %s", e.From, e.To, e.On)
}

// InvalidPoolConfigurationError reports a pool that cannot be computed: an
// account claimed by two pools, or a pool with no participants. Other pools
// still compute.
type InvalidPoolConfigurationError struct {
	Pool   string
	Reason string
}

func (e *InvalidPoolConfigurationError) Error() string {
	return fmt.Sprintf("pool %q: %s", e.Pool, e.Reason)
}

// MalformedRecordError reports a single input record that was excluded at
// snapshot construction: non-positive rate, unknown currency code, dangling
// account reference. The record is excluded and counted, never coerced.
type MalformedRecordError struct {
	Kind   string // "account", "balance", "fx_rate", "entity", "pool"
	Ref    string // identifier of the offending record
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record %q: %s", e.Kind, e.Ref, e.Reason)
}
