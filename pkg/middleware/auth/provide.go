package auth

import (
	"github.com/joeydtaylor/steeze-rpc/pkg/manifest"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProvideAuthentication builds the authorizer from the loaded configuration.
func ProvideAuthentication(cfg manifest.Config, log *zap.Logger) *Middleware {
	m := New(cfg.Auth.Key)
	if !m.configured {
		log.Warn("auth.key is empty; every request will be rejected")
	}
	return m
}

var Module = fx.Options(
	fx.Provide(ProvideAuthentication),
)
