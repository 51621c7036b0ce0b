package swap

import "github.com/mr-tron/base58"

// Normalizer canonicalizes one protocol's decoded output into an Event.
// All protocols share the same shape: an instruction filter plus an
// extraction function over the filtered result.
type Normalizer struct {
	Platform Platform
	// ProgramID the normalizer filters decoded instructions to.
	ProgramID string
	// IncludeTokenProgram widens the filter to SPL token transfers, needed
	// by protocols whose swaps settle through inner transfer instructions.
	IncludeTokenProgram bool
	// Rules are tried in order against the decoded events; the first match
	// produces the swap.
	Rules []eventRule
}

// eventRule maps one decoded event layout to the canonical swap fields.
// Two layout families exist in the supported protocols:
//
//   - mint-pair events carry explicit in/out mints and amounts
//     (MintInField set); direction falls out of which side is wrapped SOL.
//   - trade events carry the traded token mint plus a direction marker
//     (fixed per event name, or a boolean field); amounts are given as
//     quote-side and token-side values.
type eventRule struct {
	Name      string
	Direction TxType // fixed direction; TxTypeUnknown means read BoolField
	BoolField string // boolean event field, true ⇒ Buy

	// mint-pair layout
	MintInField  string
	MintOutField string
	InField      string
	OutField     string

	// trade layout
	MintField  string
	QuoteField string
	TokenField string

	UserField string
}

// Normalize filters the decoded transaction to this normalizer's programs
// and extracts a swap. Returns nil when the filtered set holds no swap:
// not every transaction touching a protocol's program is one.
func (n *Normalizer) Normalize(tx *RawTransaction, decoded *DecodedTransaction) *Event {
	if decoded == nil || !n.touchesProgram(decoded) {
		return nil
	}

	for _, event := range decoded.Events {
		if event.ProgramID != "" && event.ProgramID != n.ProgramID {
			continue
		}
		for _, rule := range n.Rules {
			if rule.Name != event.Name {
				continue
			}
			if out := rule.extract(n.Platform, tx, event.Data); out != nil {
				return out
			}
		}
	}
	return nil
}

// touchesProgram reports whether any decoded instruction (top-level or
// inner) belongs to the normalizer's program set.
func (n *Normalizer) touchesProgram(decoded *DecodedTransaction) bool {
	for _, ix := range decoded.Instructions {
		if ix.ProgramID == n.ProgramID {
			return true
		}
		if n.IncludeTokenProgram && ix.ProgramID == TokenProgramID {
			return true
		}
	}
	return false
}

func (r *eventRule) extract(platform Platform, tx *RawTransaction, data map[string]interface{}) *Event {
	feePayer := stringField(data, r.UserField)
	if feePayer == "" {
		feePayer = tx.FeePayer()
	}

	event := &Event{
		TransactionID: tx.Signature,
		Platform:      platform,
		Slot:          tx.Slot,
		FeePayer:      feePayer,
	}

	if r.MintInField != "" {
		// mint-pair layout
		event.MintFrom = stringField(data, r.MintInField)
		event.MintTo = stringField(data, r.MintOutField)
		event.InAmount = amountString(data[r.InField])
		event.OutAmount = amountString(data[r.OutField])
		switch {
		case event.MintFrom == WrappedSolMint:
			event.Type = TxTypeBuy
		case event.MintTo == WrappedSolMint:
			event.Type = TxTypeSell
		default:
			event.Type = TxTypeUnknown
		}
	} else {
		// trade layout
		direction := r.Direction
		if direction == TxTypeUnknown || direction == "" {
			if isBuy, ok := data[r.BoolField].(bool); ok {
				if isBuy {
					direction = TxTypeBuy
				} else {
					direction = TxTypeSell
				}
			} else {
				return nil
			}
		}
		mint := stringField(data, r.MintField)
		if mint == "" {
			return nil
		}
		quote := amountString(data[r.QuoteField])
		token := amountString(data[r.TokenField])
		event.Type = direction
		if direction == TxTypeBuy {
			event.MintFrom = WrappedSolMint
			event.MintTo = mint
			event.InAmount = quote
			event.OutAmount = token
		} else {
			event.MintFrom = mint
			event.MintTo = WrappedSolMint
			event.InAmount = token
			event.OutAmount = quote
		}
	}

	if event.MintFrom == event.MintTo {
		return nil
	}
	if !validMint(event.MintFrom) || !validMint(event.MintTo) {
		return nil
	}
	// an event without executed amounts is not a swap
	if event.InAmount == "" || event.OutAmount == "" {
		return nil
	}
	return event
}

// validMint rejects event fields that are not well-formed mint addresses.
// Decoded log data is untrusted; a program can log anything.
func validMint(mint string) bool {
	if mint == "" {
		return false
	}
	raw, err := base58.Decode(mint)
	return err == nil && len(raw) == 32
}
