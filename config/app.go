package config

type App struct {
	Port         string `envconfig:"APP_PORT" default:"8080"`
	DatabaseURL  string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret    string `envconfig:"JWT_SECRET" default:"local_dev_secret"`
	JWTTTLHours  int    `envconfig:"JWT_TTL_HOURS" default:"24"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	Env          string `envconfig:"APP_ENV" default:"dev"`
}
