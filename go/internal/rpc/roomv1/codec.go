// Package roomv1 declares the connect procedures for the room services and
// their request and response messages. Messages are plain Go structs carried
// by a JSON codec.
package roomv1

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec is the connect codec registered by every handler and client here.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name replaces connect's protobuf-JSON codec for the application/json and
// application/connect+json content types.
func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}
