package vana

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Message codes used across the HTTP boundary. The catalog maps each code to
// a human-readable text; the codes themselves are the stable contract.
const (
	MsgIdentityMissing   = "request.identityMissing"
	MsgInvalidInput      = "request.invalidInput"
	MsgForbidden         = "object.forbidden"
	MsgNotFound          = "object.notFound"
	MsgGone              = "object.gone"
	MsgConflict          = "object.locationConflict"
	MsgUnsupported       = "backend.unsupported"
	MsgReadOnly          = "backend.readOnly"
	MsgInternal          = "server.internal"
)

var defaultMessages = map[string]string{
	MsgIdentityMissing: "A caller identity header is required for this operation.",
	MsgInvalidInput:    "The request is malformed.",
	MsgForbidden:       "The caller does not have permission to perform this operation.",
	MsgNotFound:        "No object exists with the given id.",
	MsgGone:            "The object has been deleted.",
	MsgConflict:        "The supplied location does not exist in the storage backend.",
	MsgUnsupported:     "The storage backend does not support this operation.",
	MsgReadOnly:        "The storage backend is read-only.",
	MsgInternal:        "An internal error occurred.",
}

// MessageCatalog maps stable string codes to human-readable error text. It is
// loaded once at startup and injected into the boundary layer; codes absent
// from the loaded file fall back to built-in defaults.
type MessageCatalog struct {
	messages map[string]string
}

// NewMessageCatalog returns a catalog holding only the built-in defaults.
func NewMessageCatalog() *MessageCatalog {
	return &MessageCatalog{messages: defaultMessages}
}

// LoadMessageCatalog reads a YAML file of code: text pairs and overlays it on
// the built-in defaults.
func LoadMessageCatalog(path string) (*MessageCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load message catalog: %w", err)
	}

	loaded := make(map[string]string)
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("load message catalog: parse %s: %w", path, err)
	}

	merged := make(map[string]string, len(defaultMessages)+len(loaded))
	for k, v := range defaultMessages {
		merged[k] = v
	}
	for k, v := range loaded {
		merged[k] = v
	}

	return &MessageCatalog{messages: merged}, nil
}

// Lookup returns the text for code, falling back to the code itself when no
// entry exists so that responses are never empty.
func (c *MessageCatalog) Lookup(code string) string {
	if msg, ok := c.messages[code]; ok {
		return msg
	}
	return code
}
