package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string
	DB        DBConfig
	Server    ServerConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	LLM       LLMConfig
	Supabase  SupabaseConfig
	Quiz      QuizConfig
	Plans     PlansConfig
	CacheTTLs CacheTTLConfig
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	// SimpleProtocol disables prepared statements, required behind pgbouncer in transaction mode.
	SimpleProtocol bool
	// AutoMigrate applies pending migrations when the API starts.
	AutoMigrate bool
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Env   string
	Level string
}

// LLMConfig selects the flashcard generation backend and how documents are fed to it.
type LLMConfig struct {
	Provider       string // ollama | openai | gemini
	Timeout        time.Duration
	Temperature    float64
	ChunkSize      int
	CardsPerChunk  int
	MaxConcurrency int
	// MaxChunks caps LLM calls per document; later text is ignored.
	MaxChunks int
	Ollama    OllamaConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Embedding EmbeddingConfig
}

// EmbeddingConfig enables near-duplicate card removal. An empty provider disables it.
type EmbeddingConfig struct {
	Provider string // ollama | openai
	Model    string
	// Threshold is the cosine similarity at which two questions count as duplicates.
	Threshold float64
}

type OllamaConfig struct {
	ServerURL string
	Model     string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type SupabaseConfig struct {
	URL            string
	ServiceKey     string
	JWTSecret      string
	JWTAudience    string
	DocumentBucket string
	PaymentBucket  string
	SignedURLTTL   time.Duration
}

type QuizConfig struct {
	MaxQuestions     int
	MinFlashcards    int
	DistractorPolicy string // strict | pad | reduce
	SessionTTL       time.Duration
}

type PlansConfig struct {
	FreeUploadLimit int
	MaxUploadBytes  int64
}

type CacheTTLConfig struct {
	Flashcards time.Duration
	Profile    time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "20s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.body_limit", 12*1024*1024)
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "require")
	v.SetDefault("db.max_conns", 10)
	v.SetDefault("db.simple_protocol", false)
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("logger.level", "info")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.timeout", "90s")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.chunk_size", 3000)
	v.SetDefault("llm.cards_per_chunk", 8)
	v.SetDefault("llm.max_concurrency", 3)
	v.SetDefault("llm.max_chunks", 20)
	v.SetDefault("llm.ollama.server_url", "http://localhost:11434")
	v.SetDefault("llm.ollama.model", "qwen3:4b")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.gemini.model", "gemini-2.0-flash")
	v.SetDefault("llm.embedding.provider", "")
	v.SetDefault("llm.embedding.threshold", 0.92)
	v.SetDefault("supabase.jwt_audience", "authenticated")
	v.SetDefault("supabase.document_bucket", "documents")
	v.SetDefault("supabase.payment_bucket", "payment-proofs")
	v.SetDefault("supabase.signed_url_ttl", "15m")
	v.SetDefault("quiz.max_questions", 10)
	v.SetDefault("quiz.min_flashcards", 4)
	v.SetDefault("quiz.distractor_policy", "strict")
	v.SetDefault("quiz.session_ttl", "2h")
	v.SetDefault("plans.free_upload_limit", 3)
	v.SetDefault("plans.max_upload_bytes", 10*1024*1024)
	v.SetDefault("cache_ttls.flashcards", "30m")
	v.SetDefault("cache_ttls.profile", "5m")
}

// LoadConfig reads config.yaml (optional), a .env file (optional) and the environment.
// Environment variables use the APP_ prefix with dots replaced by underscores,
// e.g. APP_SUPABASE_JWT_SECRET; a few unprefixed names are honoured as overrides.
func LoadConfig() (*Config, error) {
	// .env is optional, a missing file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	env := v.GetString("env")
	if e := os.Getenv("ENV"); e != "" {
		env = e
	}

	cfg := &Config{
		Env: env,
		DB: DBConfig{
			Host:           v.GetString("db.host"),
			Port:           v.GetInt("db.port"),
			User:           v.GetString("db.user"),
			Password:       v.GetString("db.password"),
			DBName:         v.GetString("db.name"),
			SSLMode:        v.GetString("db.sslmode"),
			MaxConns:       v.GetInt("db.max_conns"),
			SimpleProtocol: v.GetBool("db.simple_protocol"),
			AutoMigrate:    v.GetBool("db.auto_migrate"),
		},
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Env:   env,
			Level: v.GetString("logger.level"),
		},
		LLM: LLMConfig{
			Provider:       v.GetString("llm.provider"),
			Timeout:        v.GetDuration("llm.timeout"),
			Temperature:    v.GetFloat64("llm.temperature"),
			ChunkSize:      v.GetInt("llm.chunk_size"),
			CardsPerChunk:  v.GetInt("llm.cards_per_chunk"),
			MaxConcurrency: v.GetInt("llm.max_concurrency"),
			MaxChunks:      v.GetInt("llm.max_chunks"),
			Ollama: OllamaConfig{
				ServerURL: v.GetString("llm.ollama.server_url"),
				Model:     v.GetString("llm.ollama.model"),
			},
			OpenAI: OpenAIConfig{
				APIKey: v.GetString("llm.openai.api_key"),
				Model:  v.GetString("llm.openai.model"),
			},
			Gemini: GeminiConfig{
				APIKey: v.GetString("llm.gemini.api_key"),
				Model:  v.GetString("llm.gemini.model"),
			},
			Embedding: EmbeddingConfig{
				Provider:  v.GetString("llm.embedding.provider"),
				Model:     v.GetString("llm.embedding.model"),
				Threshold: v.GetFloat64("llm.embedding.threshold"),
			},
		},
		Supabase: SupabaseConfig{
			URL:            v.GetString("supabase.url"),
			ServiceKey:     v.GetString("supabase.service_key"),
			JWTSecret:      v.GetString("supabase.jwt_secret"),
			JWTAudience:    v.GetString("supabase.jwt_audience"),
			DocumentBucket: v.GetString("supabase.document_bucket"),
			PaymentBucket:  v.GetString("supabase.payment_bucket"),
			SignedURLTTL:   v.GetDuration("supabase.signed_url_ttl"),
		},
		Quiz: QuizConfig{
			MaxQuestions:     v.GetInt("quiz.max_questions"),
			MinFlashcards:    v.GetInt("quiz.min_flashcards"),
			DistractorPolicy: v.GetString("quiz.distractor_policy"),
			SessionTTL:       v.GetDuration("quiz.session_ttl"),
		},
		Plans: PlansConfig{
			FreeUploadLimit: v.GetInt("plans.free_upload_limit"),
			MaxUploadBytes:  v.GetInt64("plans.max_upload_bytes"),
		},
		CacheTTLs: CacheTTLConfig{
			Flashcards: v.GetDuration("cache_ttls.flashcards"),
			Profile:    v.GetDuration("cache_ttls.profile"),
		},
	}

	// Unprefixed names used by the hosting platform and local tooling.
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		cfg.Redis.Address = redisAddress
	}
	if supabaseURL := os.Getenv("SUPABASE_URL"); supabaseURL != "" {
		cfg.Supabase.URL = supabaseURL
	}
	if key := os.Getenv("SUPABASE_SERVICE_KEY"); key != "" {
		cfg.Supabase.ServiceKey = key
	}
	if secret := os.Getenv("SUPABASE_JWT_SECRET"); secret != "" {
		cfg.Supabase.JWTSecret = secret
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.OpenAI.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail much later at request time.
func (c *Config) Validate() error {
	switch c.Quiz.DistractorPolicy {
	case "strict", "pad", "reduce":
	default:
		return fmt.Errorf("invalid quiz.distractor_policy %q: expected strict, pad or reduce", c.Quiz.DistractorPolicy)
	}
	switch c.LLM.Provider {
	case "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("invalid llm.provider %q: expected ollama, openai or gemini", c.LLM.Provider)
	}
	switch c.LLM.Embedding.Provider {
	case "", "ollama", "openai":
	default:
		return fmt.Errorf("invalid llm.embedding.provider %q: expected ollama, openai or empty", c.LLM.Embedding.Provider)
	}
	if t := c.LLM.Embedding.Threshold; c.LLM.Embedding.Provider != "" && (t <= 0 || t > 1) {
		return fmt.Errorf("llm.embedding.threshold must be in (0, 1]")
	}
	if c.Quiz.MaxQuestions <= 0 {
		return fmt.Errorf("quiz.max_questions must be positive")
	}
	if c.Quiz.MinFlashcards < 4 {
		return fmt.Errorf("quiz.min_flashcards must be at least 4")
	}
	if c.LLM.ChunkSize <= 0 || c.LLM.CardsPerChunk <= 0 {
		return fmt.Errorf("llm.chunk_size and llm.cards_per_chunk must be positive")
	}
	if c.LLM.MaxConcurrency <= 0 {
		c.LLM.MaxConcurrency = 1
	}
	return nil
}

// GetDSN returns a pgx connection URL.
func (c *Config) GetDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     "/" + c.DB.DBName,
		RawQuery: "sslmode=" + c.DB.SSLMode,
	}
	return u.String()
}

// GetMigrateURL returns the DSN in the form golang-migrate's pgx/v5 driver expects.
func (c *Config) GetMigrateURL() string {
	return "pgx5" + strings.TrimPrefix(c.GetDSN(), "postgres")
}
