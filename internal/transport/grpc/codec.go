// Package grpc wires the identity service's GetUser RPC (the chat
// service's replica-miss fallback, spec §6) over google.golang.org/grpc.
//
// Message types here are plain Go structs rather than protoc-generated
// stubs: registering a codec under the name "proto" overrides grpc-go's
// default wire codec for every call that doesn't request a content
// subtype, so the generated-stub step is skipped without giving up
// grpc's connection management, deadlines, and interceptor chain.
package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)     { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
