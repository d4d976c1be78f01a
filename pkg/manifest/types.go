package manifest

// Server is the HTTP surface.
type Server struct {
	Listen      string `toml:"listen" yaml:"listen"`
	Path        string `toml:"path" yaml:"path"`                 // GET invoke endpoint
	JSONRPCPath string `toml:"jsonrpc_path" yaml:"jsonrpc_path"` // "" disables JSON-RPC
	TLSCert     string `toml:"tls_cert" yaml:"tls_cert"`
	TLSKey      string `toml:"tls_key" yaml:"tls_key"`
}

// Auth holds the shared secret compared on every request.
type Auth struct {
	Key string `toml:"key" yaml:"key"`
}

// Args selects the wire form of the `args` query parameter.
type Args struct {
	Legacy bool `toml:"legacy" yaml:"legacy"` // comma-joined, lossy
}

type Dispatch struct {
	TimeoutMS int      `toml:"timeout_ms" yaml:"timeout_ms"`
	Functions []string `toml:"functions" yaml:"functions"` // allowlist; empty = all registered
}

type AuditTLS struct {
	Enable     bool   `toml:"enable" yaml:"enable"`
	ClientCert string `toml:"client_cert" yaml:"client_cert"`
	ClientKey  string `toml:"client_key" yaml:"client_key"`
	CA         string `toml:"ca" yaml:"ca"`
}

// AuditOAuth enables OAuth2 client credentials on the relay when issuer,
// client_id and client_secret are all set.
type AuditOAuth struct {
	Issuer        string   `toml:"issuer" yaml:"issuer"`
	JWKSURL       string   `toml:"jwks_url" yaml:"jwks_url"`
	ClientID      string   `toml:"client_id" yaml:"client_id"`
	ClientSecret  string   `toml:"client_secret" yaml:"client_secret"`
	Scopes        []string `toml:"scopes" yaml:"scopes"`
	RefreshLeeway string   `toml:"refresh_leeway" yaml:"refresh_leeway"` // e.g. "20s"
}

// Audit configures the electrician relay receiving one record per invocation.
type Audit struct {
	Targets        []string          `toml:"targets" yaml:"targets"`
	Topic          string            `toml:"topic" yaml:"topic"`
	CompressSnappy bool              `toml:"compress_snappy" yaml:"compress_snappy"`
	StaticHeaders  map[string]string `toml:"static_headers" yaml:"static_headers"`
	TLS            AuditTLS          `toml:"tls" yaml:"tls"`
	AESKeyHex      string            `toml:"aes_key_hex" yaml:"aes_key_hex"`
	OAuth          AuditOAuth        `toml:"oauth" yaml:"oauth"`
}

type Tracing struct {
	Enabled     bool    `toml:"enabled" yaml:"enabled"`
	Endpoint    string  `toml:"endpoint" yaml:"endpoint"`
	ServiceName string  `toml:"service_name" yaml:"service_name"`
	SampleRate  float64 `toml:"sample_rate" yaml:"sample_rate"`
}

// Client is used by the invoke CLI.
type Client struct {
	Endpoint  string `toml:"endpoint" yaml:"endpoint"`
	TimeoutMS int    `toml:"timeout_ms" yaml:"timeout_ms"`
}
