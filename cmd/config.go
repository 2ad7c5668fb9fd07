package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/locker"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	SinkLog   = "log"
	SinkKafka = "kafka"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	Store      string
	LogLevel   string

	Credential credential.Policy

	ReminderThreshold time.Duration
	SweepInterval     time.Duration
	SweepBudget       time.Duration
	SweepBatchSize    int

	RetractionWindow time.Duration
	DisputeWindow    time.Duration
	MaxPickupWindow  time.Duration

	Notifier               string
	AuditSink              string
	AdminContact           string
	KafkaBrokers           []string
	KafkaNotificationTopic string
	KafkaAuditTopic        string
	RedisAddr              string

	PickupRatePerSecond float64
	PickupBurst         int

	LockerSeed []LockerSeed
}

// LockerSeed asks for Count lockers of Size on an empty store.
type LockerSeed struct {
	Size  locker.SizeClass
	Count int
}

// DSN is the PostgreSQL connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads .env when present, then the process environment. Every
// malformed value is reported, not just the first.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	r := envReader{}
	policy := credential.DefaultPolicy()
	policy.PINLength = r.int("PIN_LENGTH", policy.PINLength)
	policy.Iterations = r.int("PIN_ITERATIONS", policy.Iterations)
	policy.KeyLength = r.int("PIN_KEY_LENGTH", policy.KeyLength)
	policy.SaltLength = r.int("PIN_SALT_LENGTH", policy.SaltLength)
	policy.PINTTL = r.duration("PIN_TTL", policy.PINTTL)
	policy.TokenTTL = r.duration("TOKEN_TTL", policy.TokenTTL)
	policy.MaxDailyGenerations = r.int("MAX_DAILY_GENERATIONS", policy.MaxDailyGenerations)
	policy.Calendar = r.location("CALENDAR_TIMEZONE", time.UTC)

	config := Config{
		HTTPPort:   r.string("HTTP_PORT", "8080"),
		DBHost:     r.string("DB_HOST", "localhost"),
		DBPort:     r.string("DB_PORT", "5432"),
		DBUser:     r.string("DB_USER", "postgres"),
		DBPassword: r.string("DB_PASSWORD", ""),
		DBName:     r.string("DB_NAME", "parcellocker"),
		DBSslMode:  r.string("DB_SSLMODE", "disable"),
		Store:      strings.ToLower(r.string("STORE", StorePostgres)),
		LogLevel:   strings.ToLower(r.string("LOG_LEVEL", "info")),

		Credential: policy,

		ReminderThreshold: r.duration("REMINDER_THRESHOLD", 24*time.Hour),
		SweepInterval:     r.duration("SWEEP_INTERVAL", time.Hour),
		SweepBudget:       r.duration("SWEEP_BUDGET", 5*time.Minute),
		SweepBatchSize:    r.int("SWEEP_BATCH_SIZE", 100),

		RetractionWindow: r.duration("RETRACTION_WINDOW", 15*time.Minute),
		DisputeWindow:    r.duration("DISPUTE_WINDOW", 30*time.Minute),
		MaxPickupWindow:  r.duration("MAX_PICKUP_WINDOW", 7*24*time.Hour),

		Notifier:               strings.ToLower(r.string("NOTIFIER", SinkLog)),
		AuditSink:              strings.ToLower(r.string("AUDIT_SINK", SinkLog)),
		AdminContact:           r.string("ADMIN_CONTACT", ""),
		KafkaBrokers:           r.list("KAFKA_BROKERS"),
		KafkaNotificationTopic: r.string("KAFKA_NOTIFICATION_TOPIC", "parcellocker.notifications"),
		KafkaAuditTopic:        r.string("KAFKA_AUDIT_TOPIC", "parcellocker.audit"),
		RedisAddr:              r.string("REDIS_ADDR", ""),

		PickupRatePerSecond: r.float("PICKUP_RATE_PER_SECOND", 1),
		PickupBurst:         r.int("PICKUP_BURST", 5),
	}

	seed, err := ParseLockerSeed(r.string("LOCKER_SEED", ""))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("LOCKER_SEED: %w", err))
	}
	config.LockerSeed = seed

	if len(r.errs) > 0 {
		return Config{}, errors.Join(r.errs...)
	}
	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	var errList []error
	if err := c.Credential.Validate(); err != nil {
		errList = append(errList, err)
	}
	if c.Store != StorePostgres && c.Store != StoreMemory {
		errList = append(errList, fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store))
	}
	for name, sink := range map[string]string{"NOTIFIER": c.Notifier, "AUDIT_SINK": c.AuditSink} {
		if sink != SinkLog && sink != SinkKafka {
			errList = append(errList, fmt.Errorf("%s must be %q or %q, got %q", name, SinkLog, SinkKafka, sink))
		}
	}
	if (c.Notifier == SinkKafka || c.AuditSink == SinkKafka) && len(c.KafkaBrokers) == 0 {
		errList = append(errList, errors.New("KAFKA_BROKERS is required when a kafka sink is selected"))
	}
	for name, d := range map[string]time.Duration{
		"REMINDER_THRESHOLD": c.ReminderThreshold,
		"SWEEP_INTERVAL":     c.SweepInterval,
		"SWEEP_BUDGET":       c.SweepBudget,
		"RETRACTION_WINDOW":  c.RetractionWindow,
		"DISPUTE_WINDOW":     c.DisputeWindow,
		"MAX_PICKUP_WINDOW":  c.MaxPickupWindow,
	} {
		if d <= 0 {
			errList = append(errList, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.SweepBatchSize <= 0 {
		errList = append(errList, fmt.Errorf("SWEEP_BATCH_SIZE must be positive, got %d", c.SweepBatchSize))
	}
	if c.PickupRatePerSecond <= 0 || c.PickupBurst <= 0 {
		errList = append(errList, errors.New("PICKUP_RATE_PER_SECOND and PICKUP_BURST must be positive"))
	}
	return errors.Join(errList...)
}

// ParseLockerSeed parses "small:4,medium:3,large:2". An empty string seeds nothing.
func ParseLockerSeed(raw string) ([]LockerSeed, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var seed []LockerSeed
	for _, part := range strings.Split(raw, ",") {
		sizeRaw, countRaw, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("%q is not size:count", part)
		}
		size, err := locker.ParseSizeClass(sizeRaw)
		if err != nil {
			return nil, err
		}
		count, err := strconv.Atoi(strings.TrimSpace(countRaw))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("%q is not a positive count", countRaw)
		}
		seed = append(seed, LockerSeed{Size: size, Count: count})
	}
	return seed, nil
}

// envReader collects parse errors so that LoadConfig reports them together.
type envReader struct {
	errs []error
}

func (r *envReader) string(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (r *envReader) int(key string, fallback int) int {
	v := r.string(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (r *envReader) float(key string, fallback float64) float64 {
	v := r.string(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := r.string(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (r *envReader) location(key string, fallback *time.Location) *time.Location {
	v := r.string(key, "")
	if v == "" {
		return fallback
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return loc
}

func (r *envReader) list(key string) []string {
	var out []string
	for _, item := range strings.Split(r.string(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
