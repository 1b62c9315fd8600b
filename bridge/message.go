// Package bridge is the contract between the embedded reading page and the
// native shell: typed messages coming in, scripts going out.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	ErrUnknownMessage   = errors.New("bridge: unknown message")
	ErrMalformedMessage = errors.New("bridge: malformed message")
)

const (
	TypeBookSelected           = "bookSelected"
	TypeDictionaryTextSelected = "dictionaryTextSelected"
	TypeChromeToggled          = "chromeToggled"
	TypeTermClicked            = "termClicked"
	TypePageChanged            = "pageChanged"
)

// Message is one notification from the page. The set of implementations
// is closed.
type Message interface {
	Type() string
	message()
}

type BookSelected struct {
	BookID int `json:"bookId"`
}

type DictionaryTextSelected struct {
	Text string `json:"text"`
}

// ChromeToggled reports that the title and progress bar were hidden or
// shown.
type ChromeToggled struct {
	Hidden bool `json:"hidden"`
}

type TermClicked struct {
	TermID int    `json:"termId"`
	Text   string `json:"text"`
}

type PageChanged struct {
	BookID int `json:"bookId"`
	Page   int `json:"page"`
}

func (BookSelected) Type() string           { return TypeBookSelected }
func (DictionaryTextSelected) Type() string { return TypeDictionaryTextSelected }
func (ChromeToggled) Type() string          { return TypeChromeToggled }
func (TermClicked) Type() string            { return TypeTermClicked }
func (PageChanged) Type() string            { return TypePageChanged }

func (BookSelected) message()           {}
func (DictionaryTextSelected) message() {}
func (ChromeToggled) message()          {}
func (TermClicked) message()            {}
func (PageChanged) message()            {}

// Decode reads a {"type": ..., ...} envelope.
func Decode(data []byte) (Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("bridge: decode: invalid json: %w", ErrMalformedMessage)
	}
	typ := gjson.GetBytes(data, "type")
	if typ.Type != gjson.String {
		return nil, fmt.Errorf("bridge: decode: missing type: %w", ErrUnknownMessage)
	}

	var msg Message
	var err error
	switch typ.Str {
	case TypeBookSelected:
		var m BookSelected
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeDictionaryTextSelected:
		var m DictionaryTextSelected
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeChromeToggled:
		var m ChromeToggled
		err = json.Unmarshal(data, &m)
		msg = m
	case TypeTermClicked:
		var m TermClicked
		err = json.Unmarshal(data, &m)
		msg = m
	case TypePageChanged:
		var m PageChanged
		err = json.Unmarshal(data, &m)
		msg = m
	default:
		return nil, fmt.Errorf("bridge: decode %q: %w", typ.Str, ErrUnknownMessage)
	}
	if err != nil {
		return nil, fmt.Errorf("bridge: decode %s: %w: %w", typ.Str, ErrMalformedMessage, err)
	}
	return msg, nil
}

// Encode is the inverse of Decode.
func Encode(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"], _ = json.Marshal(msg.Type())
	return json.Marshal(fields)
}
