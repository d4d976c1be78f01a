package manifest

import "time"

// Config is the top-level configuration document.
type Config struct {
	Server   Server   `toml:"server" yaml:"server"`
	Auth     Auth     `toml:"auth" yaml:"auth"`
	Args     Args     `toml:"args" yaml:"args"`
	Dispatch Dispatch `toml:"dispatch" yaml:"dispatch"`
	Audit    Audit    `toml:"audit" yaml:"audit"`
	Tracing  Tracing  `toml:"tracing" yaml:"tracing"`
	Client   Client   `toml:"client" yaml:"client"`
}

// Default returns the values a document starts from before decoding.
func Default() Config {
	return Config{
		Server: Server{
			Listen:      ":4000",
			Path:        "/exec",
			JSONRPCPath: "/rpc",
		},
		Dispatch: Dispatch{TimeoutMS: 30000},
		Audit:    Audit{Topic: "rpc.invocations"},
		Tracing: Tracing{
			Endpoint:    "localhost:4318",
			ServiceName: "steeze-rpc",
			SampleRate:  1.0,
		},
		Client: Client{TimeoutMS: 30000},
	}
}

func (c Config) DispatchTimeout() time.Duration {
	return time.Duration(c.Dispatch.TimeoutMS) * time.Millisecond
}

func (c Config) ClientTimeout() time.Duration {
	return time.Duration(c.Client.TimeoutMS) * time.Millisecond
}

func (c Config) TLSEnabled() bool {
	return c.Server.TLSCert != "" && c.Server.TLSKey != ""
}

// AuditOAuthLeeway is the token refresh leeway; 0 lets the relay pick.
func (c Config) AuditOAuthLeeway() time.Duration {
	d, _ := time.ParseDuration(c.Audit.OAuth.RefreshLeeway)
	return d
}
