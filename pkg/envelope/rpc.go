package envelope

// JSON-RPC service and method the bridge registers.
const (
	RPCService = "Bridge"
	RPCMethod  = RPCService + ".Invoke"
)

// InvokeArgs are the params of the JSON-RPC method Bridge.Invoke.
type InvokeArgs struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
	Key  string   `json:"key"`
}

// InvokeReply is the JSON-RPC result; Value matches the GET envelope's value.
type InvokeReply struct {
	Value any  `json:"value"`
	OK    bool `json:"ok"`
}

func (r Result) Reply() InvokeReply {
	return InvokeReply{Value: r.Wire(), OK: r.OK()}
}
