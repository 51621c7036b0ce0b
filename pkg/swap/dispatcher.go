package swap

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Dispatcher routes a raw transaction through classification, decoding and
// the matching normalizer. Pure with respect to its inputs; persistence and
// enrichment happen downstream.
type Dispatcher struct {
	decoders    *DecoderRegistry
	normalizers map[Platform]*Normalizer
	now         func() time.Time
}

// NewDispatcher builds a dispatcher over the default normalizer table.
// The registry supplies the decode capability per program id; platforms
// without a registered decoder still fall through the built-in log decoder.
func NewDispatcher(decoders *DecoderRegistry) *Dispatcher {
	if decoders == nil {
		decoders = DefaultDecoderRegistry()
	}

	table := DefaultNormalizers()
	normalizers := make(map[Platform]*Normalizer, len(table))
	for i := range table {
		normalizers[table[i].Platform] = &table[i]
	}

	return &Dispatcher{
		decoders:    decoders,
		normalizers: normalizers,
		now:         time.Now,
	}
}

// DefaultDecoderRegistry registers the log decoder for every platform in
// the classification registry. Schema-aware decoders registered on top of
// it take precedence for their program id.
func DefaultDecoderRegistry() *DecoderRegistry {
	registry := NewDecoderRegistry()
	for _, platform := range Platforms() {
		id := ProgramID(platform)
		registry.Register(id, NewLogDecoder(id))
	}
	return registry
}

// Dispatch classifies and normalizes one transaction. Returns nil when the
// transaction touches no supported protocol or holds no executed swap; both
// are routine filtering, not errors.
func (d *Dispatcher) Dispatch(tx *RawTransaction) *Event {
	if tx == nil || tx.Failed {
		return nil
	}

	platform, ok := Classify(tx.AccountKeys)
	if !ok {
		return nil
	}

	normalizer, ok := d.normalizers[platform]
	if !ok {
		log.Warnf("no normalizer registered for platform %s", platform)
		return nil
	}

	event := normalizer.Normalize(tx, d.decoders.Decode(tx))
	if event == nil {
		return nil
	}
	event.ObservedAt = d.now()
	return event
}
