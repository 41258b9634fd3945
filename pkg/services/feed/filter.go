package feed

import (
	"encoding/json"

	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/twmb/murmur3"
)

// EventType is the kind of a feed event.
type EventType string

// Event kinds sent over the feed.
const (
	// BlockEventType announces every accepted block.
	BlockEventType EventType = "block"
	// ExecutionEventType announces every transaction execution result.
	ExecutionEventType EventType = "execution"
	// NotificationEventType announces contract notifications.
	NotificationEventType EventType = "notification"
)

// Event is a single feed message.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// Filter selects the events a subscriber receives. A zero filter passes
// everything.
type Filter struct {
	// Types limits the event kinds, empty means all of them.
	Types []EventType `json:"types,omitempty"`
	// Contract limits notifications to the given contract.
	Contract *util.Uint160 `json:"contract,omitempty"`
	// Name limits notifications to the given event name.
	Name string `json:"name,omitempty"`
}

// Fingerprint returns a stable hash of the filter, identical filters
// produce identical fingerprints. It's there for logs: a fingerprint names
// a subscription shape without dumping the whole filter.
func (f Filter) Fingerprint() uint64 {
	data, err := json.Marshal(f)
	if err != nil {
		return 0
	}
	return murmur3.Sum64(data)
}

func (f Filter) passesType(typ EventType) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == typ {
			return true
		}
	}
	return false
}

// MatchesBlock returns whether block events pass the filter.
func (f Filter) MatchesBlock(_ *block.Block) bool {
	return f.passesType(BlockEventType)
}

// MatchesExecution returns whether the given execution result passes the
// filter.
func (f Filter) MatchesExecution(_ *state.AppExecResult) bool {
	return f.passesType(ExecutionEventType)
}

// MatchesNotification returns whether the given contract notification
// passes the filter.
func (f Filter) MatchesNotification(n *state.NotificationEvent) bool {
	if !f.passesType(NotificationEventType) {
		return false
	}
	if f.Contract != nil && !f.Contract.Equals(n.ScriptHash) {
		return false
	}
	if f.Name != "" && f.Name != n.Name {
		return false
	}
	return true
}
