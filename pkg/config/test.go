package config

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	cfg.JWTSecret = "booknest-test-secret"
	cfg.ServerHost = "127.0.0.1"
	// Port 0 binds an ephemeral port so parallel test runs don't collide.
	cfg.ServerPort = 0
}
