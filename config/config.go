package config

import "time"

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"clover-api"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// PostgreSQL (social record store, read-only at runtime)
	DatabaseDriver              string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"clover"`
	DatabaseSSLMode             string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce      int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationEnabled    bool          `env:"DB_MIGRATION_ENABLED" env-default:"false"`

	// Redis (optional user record cache)
	RedisEnabled  bool          `env:"REDIS_ENABLED" env-default:"false"`
	RedisHost     string        `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	UserCacheTTL  time.Duration `env:"USER_CACHE_TTL" env-default:"5m"`

	// Kafka Consumers (Debezium CDC streams for the record store tables)
	KafkaBrokers              []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaFriendRequestsTopic  string   `env:"KAFKA_FRIEND_REQUESTS_TOPIC" env-default:"clover.public.friend_requests"`
	KafkaContactsTopic        string   `env:"KAFKA_CONTACTS_TOPIC" env-default:"clover.public.contacts"`
	KafkaRequestConsumerGroup string   `env:"KAFKA_REQUEST_CONSUMER_GROUP" env-default:"clover-request-consumer"`
	KafkaContactConsumerGroup string   `env:"KAFKA_CONTACT_CONSUMER_GROUP" env-default:"clover-contact-consumer"`
	KafkaConsumerEnabled      bool     `env:"KAFKA_CONSUMER_ENABLED" env-default:"true"`

	// Kafka Producer (friendship domain events)
	KafkaOutputTopic  string `env:"KAFKA_OUTPUT_TOPIC" env-default:"friendship-events"`
	KafkaBatchSize    int    `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int    `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int    `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// FCM push transport
	FCMEndpoint  string        `env:"FCM_ENDPOINT" env-default:"https://fcm.googleapis.com/fcm/send"`
	FCMServerKey string        `env:"FCM_SERVER_KEY" env-default:"" validate:"required"`
	FCMTimeout   time.Duration `env:"FCM_TIMEOUT" env-default:"10s"`

	// Tracing
	TracingEnabled bool   `env:"TRACING_ENABLED" env-default:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTLPProtocol   string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure   bool   `env:"OTLP_INSECURE" env-default:"true"`
}
