package config

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Queue    *queueConfig
	Worker   *workerConfig
	Model    *modelConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"profiler"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string   `envconfig:"PROFILER_ADDRESS" default:":3443"`
	MetricsAddress  string   `envconfig:"PROFILER_METRICS_ADDRESS" default:""`
	LogLevel        string   `envconfig:"PROFILER_LOG_LEVEL" default:"info"`
	LogFormat       string   `envconfig:"PROFILER_LOG_FORMAT" default:"console"`
	MigrationFolder string   `envconfig:"PROFILER_MIGRATIONS_FOLDER" default:""`
	QuestionsFile   string   `envconfig:"PROFILER_QUESTIONS_FILE" default:"questions.yaml"`
	AllowedOrigins  []string `envconfig:"PROFILER_ALLOWED_ORIGINS" default:"*"`
	Kafka           kafkaConfig
}

type kafkaConfig struct {
	Brokers  []string            `envconfig:"PROFILER_KAFKA_BROKERS" default:""`
	Topic    string              `envconfig:"PROFILER_KAFKA_TOPIC" default:""`
	Version  sarama.KafkaVersion `envconfig:"PROFILER_KAFKA_VERSION" default:""`
	ClientID string              `envconfig:"PROFILER_KAFKA_CLIENT_ID" default:""`

	SaramaConfig *sarama.Config `ignored:"true"`
}

// Enabled reports whether events should go to kafka instead of stdout.
func (k kafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Brokers[0] != ""
}

type queueConfig struct {
	// Backend is either "table" (queue_messages table through gorm) or "pgmq".
	Backend           string        `envconfig:"QUEUE_BACKEND" default:"table"`
	Name              string        `envconfig:"QUEUE_NAME" default:"submissions"`
	VisibilityTimeout time.Duration `envconfig:"QUEUE_VISIBILITY_TIMEOUT" default:"30s"`
}

type workerConfig struct {
	BatchLimit int `envconfig:"WORKER_BATCH_LIMIT" default:"5"`
	// Scheduler is one of "river", "ticker" or "none".
	Scheduler    string        `envconfig:"WORKER_SCHEDULER" default:"river"`
	Interval     time.Duration `envconfig:"WORKER_INTERVAL" default:"1m"`
	ModelTimeout time.Duration `envconfig:"WORKER_MODEL_TIMEOUT" default:"60s"`
	RatingMin    int           `envconfig:"WORKER_RATING_MIN" default:"1"`
	RatingMax    int           `envconfig:"WORKER_RATING_MAX" default:"5"`
}

type modelConfig struct {
	APIKey      string  `envconfig:"GEMINI_API_KEY" default:""`
	Name        string  `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	BaseURL     string  `envconfig:"GEMINI_BASE_URL" default:""`
	Temperature float32 `envconfig:"GEMINI_TEMPERATURE" default:"0.4"`
}

func (m modelConfig) IsEnabled() bool {
	return m.APIKey != ""
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a fresh configuration populated only from defaults and the environment,
// bypassing the process-wide singleton.
func NewDefault() *Config {
	c := new(Config)
	_ = envconfig.Process("", c)
	return c
}
