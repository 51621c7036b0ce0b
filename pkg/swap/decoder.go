package swap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DecodedInstruction is one decoded instruction call, top-level or inner.
type DecodedInstruction struct {
	ProgramID string
	Name      string
	Accounts  map[string]string
	Args      map[string]interface{}
	Inner     bool
}

// DecodedEvent is a program event recovered from emitted logs or CPI data.
type DecodedEvent struct {
	ProgramID string
	Name      string
	Data      map[string]interface{}
}

// DecodedTransaction is the output of the decoder capability for one
// transaction: every decoded instruction call (nested included) plus the
// log-derived events.
type DecodedTransaction struct {
	Instructions []DecodedInstruction
	Events       []DecodedEvent
}

// Decoder turns a raw transaction into decoded instructions and events for
// one program's instruction/event layout. Implementations are registered by
// program id; the byte-level layout knowledge lives behind this interface.
type Decoder interface {
	Decode(tx *RawTransaction) (*DecodedTransaction, error)
}

// DecoderRegistry holds decoders keyed by program id and merges their output.
type DecoderRegistry struct {
	decoders map[string]Decoder
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[string]Decoder)}
}

// Register binds a decoder to a program id, replacing any previous binding.
func (r *DecoderRegistry) Register(programID string, d Decoder) {
	r.decoders[programID] = d
}

// Decode runs every registered decoder whose program id appears in the
// transaction's account keys and merges the results. A decoder failure is
// logged and its contribution skipped; the transaction is not rejected.
func (r *DecoderRegistry) Decode(tx *RawTransaction) *DecodedTransaction {
	merged := &DecodedTransaction{}
	for _, key := range tx.AccountKeys {
		decoder, ok := r.decoders[key]
		if !ok {
			continue
		}
		decoded, err := decoder.Decode(tx)
		if err != nil {
			log.WithFields(log.Fields{
				"signature": tx.Signature,
				"program":   key,
			}).Warnf("decode failed: %v", err)
			continue
		}
		if decoded == nil {
			continue
		}
		merged.Instructions = append(merged.Instructions, decoded.Instructions...)
		merged.Events = append(merged.Events, decoded.Events...)
	}
	return merged
}

// LogDecoder recovers instruction calls and anchor-style self-CPI events for
// one program from the transaction log messages. It only reads the textual
// log frames ("Program X invoke [n]", "Program log: Instruction: Y",
// "Program data: ..."); instruction argument layouts stay external.
type LogDecoder struct {
	programID string
}

func NewLogDecoder(programID string) *LogDecoder {
	return &LogDecoder{programID: programID}
}

func (d *LogDecoder) Decode(tx *RawTransaction) (*DecodedTransaction, error) {
	out := &DecodedTransaction{}

	// invoke stack tracks which program the current log lines belong to
	var stack []string
	depth := func() int { return len(stack) }

	for _, line := range tx.LogMessages {
		switch {
		case strings.Contains(line, " invoke ["):
			program := strings.Fields(line)
			if len(program) >= 2 {
				stack = append(stack, program[1])
			}
		case strings.HasSuffix(line, " success") || strings.HasSuffix(line, " failed"):
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case strings.HasPrefix(line, "Program log: Instruction: "):
			if depth() == 0 || stack[len(stack)-1] != d.programID {
				continue
			}
			name := strings.TrimPrefix(line, "Program log: Instruction: ")
			out.Instructions = append(out.Instructions, DecodedInstruction{
				ProgramID: d.programID,
				Name:      name,
				Inner:     depth() > 1,
			})
		case strings.HasPrefix(line, "Program log: {"):
			// some programs emit the executed swap as a JSON log line
			if depth() == 0 || stack[len(stack)-1] != d.programID {
				continue
			}
			payload := strings.TrimPrefix(line, "Program log: ")
			event, err := parseJSONEvent(d.programID, payload)
			if err != nil {
				return nil, fmt.Errorf("parse log event: %w", err)
			}
			out.Events = append(out.Events, *event)
		}
	}

	return out, nil
}

func parseJSONEvent(programID, payload string) (*DecodedEvent, error) {
	var data map[string]interface{}
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&data); err != nil {
		return nil, err
	}
	name := "Swap"
	if n, ok := data["event"].(string); ok {
		name = n
		delete(data, "event")
	}
	return &DecodedEvent{ProgramID: programID, Name: name, Data: data}, nil
}

// amountString renders a decoded numeric field as a base-10 string. Decoded
// layouts surface u64/u128 values as strings, json.Number or native ints
// depending on the decoder; amounts are never kept as floats downstream.
func amountString(v interface{}) string {
	switch n := v.(type) {
	case string:
		return n
	case json.Number:
		return n.String()
	case uint64:
		return strconv.FormatUint(n, 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return ""
	}
}

func stringField(data map[string]interface{}, key string) string {
	if key == "" {
		return ""
	}
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}
