package config

import "time"

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DBConfig struct {
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int32         `mapstructure:"max_open_conns" validate:"gte=1"`
	MinIdleConns    int32         `mapstructure:"min_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	HealthTimeout   time.Duration `mapstructure:"health_timeout" validate:"gt=0"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
}

type RedisConfig struct {
	URL             string        `mapstructure:"url" validate:"required"`
	KeyPrefix       string        `mapstructure:"key_prefix" validate:"required"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type RabbitMQConfig struct {
	URL           string `mapstructure:"url"`
	MailExchange  string `mapstructure:"mail_exchange"`
	MailRouting   string `mapstructure:"mail_routing_key"`
	MailQueue     string `mapstructure:"mail_queue"`
	UserExchange  string `mapstructure:"user_exchange"`
	UserQueue     string `mapstructure:"user_queue"`
	UserRouting   string `mapstructure:"user_routing_key"`
	ExchangeType  string `mapstructure:"exchange_type" validate:"omitempty,oneof=direct topic fanout"`
	WorkerCount   int    `mapstructure:"worker_count" validate:"gte=1"`
	ConsumeEvents bool   `mapstructure:"consume_user_events"`
}

type AuthConfig struct {
	Secret    string `mapstructure:"secret" validate:"required,min=16"`
	ExpiryMin int    `mapstructure:"expiry_min" validate:"gte=1"`
}

type CheckerConfig struct {
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	UserAgent       string        `mapstructure:"user_agent"`
	VerifyTLS       bool          `mapstructure:"verify_tls"`
	FollowRedirects bool          `mapstructure:"follow_redirects"`
}

type SMTPConfig struct {
	Addr     string `mapstructure:"addr"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

type MailConfig struct {
	Transport     string        `mapstructure:"transport" validate:"required,oneof=smtp amqp"`
	From          string        `mapstructure:"from" validate:"required,email"`
	DefaultLocale string        `mapstructure:"default_locale" validate:"required"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	SMTP          SMTPConfig    `mapstructure:"smtp"`
}

type QueuesConfig struct {
	Names []string `mapstructure:"names" validate:"required,min=1,unique,dive,required"`
}

type SchedulerConfig struct {
	IntervalSec  int           `mapstructure:"interval_sec" validate:"oneof=60 300 3600 86400"`
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
}

type Config struct {
	Env         string          `mapstructure:"env" validate:"required,oneof=development production test"`
	ServiceName string          `mapstructure:"service_name" validate:"required"`
	LogLevel    string          `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	HTTP        HTTPConfig      `mapstructure:"http"`
	DB          DBConfig        `mapstructure:"db"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RabbitMQ    RabbitMQConfig  `mapstructure:"rabbitmq"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Checker     CheckerConfig   `mapstructure:"checker"`
	Mail        MailConfig      `mapstructure:"mail"`
	Queues      QueuesConfig    `mapstructure:"queues"`
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
}
