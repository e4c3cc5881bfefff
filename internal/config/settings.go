package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerSettings configures the RPC boundary.
type ServerSettings struct {
	ListenAddr       string `yaml:"listen_addr"`
	AuthToken        string `yaml:"auth_token"`
	NoAuthBypass     bool   `yaml:"no_auth_bypass"`
	RateLimitEnabled bool   `yaml:"rate_limit_enabled"`
	RatePerSecond    int    `yaml:"rate_per_second"`
	RateBurst        int    `yaml:"rate_burst"`
}

// IndexSettings configures chunking, retrieval and the bounded waits of the Index Manager.
type IndexSettings struct {
	ChunkSize          int           `yaml:"chunk_size"`
	ChunkOverlap       int           `yaml:"chunk_overlap"`
	DefaultTopK        int           `yaml:"default_top_k"`
	MaxTopK            int           `yaml:"max_top_k"`
	LockWaitTimeout    time.Duration `yaml:"lock_wait_timeout"`
	GatewayCallTimeout time.Duration `yaml:"gateway_call_timeout"`
}

type SnapshotSettings struct {
	Backend       string `yaml:"backend"`
	Dir           string `yaml:"dir"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisKey      string `yaml:"redis_key"`
}

type GatewaySettings struct {
	Provider       string `yaml:"provider"`
	EmbeddingModel string `yaml:"embedding_model"`
	ChatModel      string `yaml:"chat_model"`
	GoogleAPIKey   string `yaml:"-"`
	OpenAIAPIKey   string `yaml:"-"`
	OpenAIBaseURL  string `yaml:"openai_base_url"`
}

// MirrorSettings enables the optional qdrant passage mirror when QdrantHost is set.
type MirrorSettings struct {
	QdrantHost       string `yaml:"qdrant_host"`
	QdrantPort       int    `yaml:"qdrant_port"`
	QdrantCollection string `yaml:"qdrant_collection"`
	QdrantAPIKey     string `yaml:"-"`
}

type LoggingSettings struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Settings is the root configuration of the indexing service.
type Settings struct {
	Server   ServerSettings   `yaml:"server"`
	Index    IndexSettings    `yaml:"index"`
	Snapshot SnapshotSettings `yaml:"snapshot"`
	Gateway  GatewaySettings  `yaml:"gateway"`
	Mirror   MirrorSettings   `yaml:"mirror"`
	Logging  LoggingSettings  `yaml:"logging"`
}

// Default returns the settings used when no file or environment overrides are present.
func Default() Settings {
	level := "debug"
	if IS_PROD {
		level = LOG_LEVEL_PROD.String()
	}
	return Settings{
		Server: ServerSettings{
			ListenAddr:    ServerListenAddr,
			RatePerSecond: RATE_LIMIT_PER_SECOND,
			RateBurst:     BURST_RATE_LIMIT_PER_SECOND,
		},
		Index: IndexSettings{
			ChunkSize:          DefaultChunkSize,
			ChunkOverlap:       DefaultChunkOverlap,
			DefaultTopK:        DefaultTopK,
			MaxTopK:            MaxTopK,
			LockWaitTimeout:    LockWaitTimeout,
			GatewayCallTimeout: GatewayCallTimeout,
		},
		Snapshot: SnapshotSettings{
			Backend:   SnapshotBackendDir,
			Dir:       DefaultSnapshotDir,
			RedisAddr: RedisAddr,
			RedisDB:   RedisDB,
			RedisKey:  RedisSnapshotKey,
		},
		Gateway: GatewaySettings{
			Provider: GatewayGemini,
		},
		Mirror: MirrorSettings{
			QdrantPort:       QdrantGrpcPort,
			QdrantCollection: QdrantCollection,
		},
		Logging: LoggingSettings{
			Level: level,
			JSON:  IS_PROD,
		},
	}
}

// Load builds Settings from defaults, an optional YAML file and the environment, in that order.
// A missing file at path is not an error; an empty path skips the file step.
func Load(path string) (Settings, error) {
	_ = godotenv.Load()

	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return s, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&s)
	applyModelDefaults(&s)

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func applyEnv(s *Settings) {
	setString(&s.Server.ListenAddr, "INDEX_LISTEN_ADDR")
	setString(&s.Server.AuthToken, "INDEX_AUTH_TOKEN")
	setString(&s.Snapshot.Backend, "INDEX_SNAPSHOT_BACKEND")
	setString(&s.Snapshot.Dir, "INDEX_SNAPSHOT_DIR")
	setString(&s.Snapshot.RedisAddr, "REDIS_ADDR")
	setString(&s.Snapshot.RedisPassword, "REDIS_PASSWORD")
	setString(&s.Gateway.Provider, "INDEX_GATEWAY")
	setString(&s.Gateway.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&s.Gateway.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&s.Gateway.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&s.Mirror.QdrantHost, "QDRANT_HOST")
	setString(&s.Mirror.QdrantAPIKey, "QDRANT_API_KEY")
	setString(&s.Logging.Level, "INDEX_LOG_LEVEL")

	if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil {
		s.Mirror.QdrantPort = port
	}
}

func setString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}

func applyModelDefaults(s *Settings) {
	switch s.Gateway.Provider {
	case GatewayGemini:
		if s.Gateway.EmbeddingModel == "" {
			s.Gateway.EmbeddingModel = GoogleEmbeddingModel
		}
		if s.Gateway.ChatModel == "" {
			s.Gateway.ChatModel = GeminiModelName
		}
	case GatewayOpenAI:
		if s.Gateway.EmbeddingModel == "" {
			s.Gateway.EmbeddingModel = OpenAIEmbeddingModel
		}
		if s.Gateway.ChatModel == "" {
			s.Gateway.ChatModel = OpenAIChatModel
		}
	}
}

// Validate reports every invalid field at once.
func (s Settings) Validate() error {
	var errs []error
	if !s.Server.NoAuthBypass && strings.TrimSpace(s.Server.AuthToken) == "" {
		errs = append(errs, errors.New("server.auth_token is required (set INDEX_AUTH_TOKEN)"))
	}
	if s.Index.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("index.chunk_size must be positive, got %d", s.Index.ChunkSize))
	}
	if s.Index.ChunkOverlap < 0 || s.Index.ChunkOverlap >= s.Index.ChunkSize {
		errs = append(errs, fmt.Errorf("index.chunk_overlap must be in [0, chunk_size), got %d", s.Index.ChunkOverlap))
	}
	if s.Index.DefaultTopK <= 0 || s.Index.DefaultTopK > s.Index.MaxTopK {
		errs = append(errs, fmt.Errorf("index.default_top_k must be in [1, max_top_k], got %d", s.Index.DefaultTopK))
	}
	if s.Index.LockWaitTimeout <= 0 || s.Index.GatewayCallTimeout <= 0 {
		errs = append(errs, errors.New("index timeouts must be positive"))
	}
	switch s.Snapshot.Backend {
	case SnapshotBackendDir:
		if s.Snapshot.Dir == "" {
			errs = append(errs, errors.New("snapshot.dir is required for the dir backend"))
		}
	case SnapshotBackendRedis:
		if s.Snapshot.RedisAddr == "" || s.Snapshot.RedisKey == "" {
			errs = append(errs, errors.New("snapshot.redis_addr and snapshot.redis_key are required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown snapshot backend %q", s.Snapshot.Backend))
	}
	switch s.Gateway.Provider {
	case GatewayGemini:
		if s.Gateway.GoogleAPIKey == "" {
			errs = append(errs, errors.New("GOOGLE_API_KEY is required for the gemini gateway"))
		}
	case GatewayOpenAI:
		if s.Gateway.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai gateway"))
		}
	case GatewayLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown gateway provider %q", s.Gateway.Provider))
	}
	return errors.Join(errs...)
}

// MirrorEnabled reports whether committed mutations are pushed to qdrant.
func (s Settings) MirrorEnabled() bool {
	return s.Mirror.QdrantHost != ""
}
