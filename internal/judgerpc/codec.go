package judgerpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName names the gRPC wire codec this package registers. Clients must
// dial with grpc.CallContentSubtype(codecName) (or set it as the server's
// only codec) since no .proto-generated message types exist to decode the
// default protobuf wire format.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
