package authcore

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"authcore/internal/rate"
	"authcore/internal/stores"
	"authcore/jwt"
	"authcore/password"
)

// Builder assembles an [Engine]. Construction is allocation-only; no
// Redis traffic happens until the first Engine call.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	users  UserStore
	sink   AuditSink
	built  bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the rate limiter and the
// reset-token store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the identity collaborator.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithAuditSink sets the sink receiving audit events. Ignored unless
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the engine. A Builder can
// build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewArgon2(cfg.Password)
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		Leeway:     cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  cfg,
		users:   b.users,
		hasher:  hasher,
		tokens:  tokens,
		limiter: rate.New(b.redis, cfg.KeyPrefix+":rl"),
		resets:  stores.NewPasswordResetStore(b.redis, cfg.KeyPrefix+":pr"),
		metrics: newMetrics(cfg.Metrics.Enabled),
		audit:   newAuditDispatcher(cfg.Audit, b.sink),
	}

	b.built = true
	return engine, nil
}
