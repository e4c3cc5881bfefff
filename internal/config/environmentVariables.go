package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                     = false
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	RATE_LIMIT_PER_SECOND       = 20
	BURST_RATE_LIMIT_PER_SECOND = 40

	//serverTimeouts
	ReadTimeout            = 10 * time.Second
	WriteTimeout           = 5 * time.Minute //mutations hold the lock across gateway calls
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 30 * time.Second
	MaxRequestBodyBytes    = 32 << 20

	//server listening port
	ServerListenAddr = ":5602"

	//index
	DefaultChunkSize    = 1000 // runes
	DefaultChunkOverlap = 150  // runes
	DefaultTopK         = 2
	MaxTopK             = 50
	PreviewLength       = 200

	//bounded waits - a hung gateway call must not wedge the index
	LockWaitTimeout    = 30 * time.Second
	GatewayCallTimeout = 60 * time.Second
	MaxLockReaders     = 64

	//snapshot
	SnapshotBackendDir   = "dir"
	SnapshotBackendRedis = "redis"
	DefaultSnapshotDir   = "./saved_index"
	SnapshotFormatVer    = 1
	RedisSnapshotKey     = "goindex:snapshot"

	//gateway providers
	GatewayGemini = "gemini"
	GatewayOpenAI = "openai"
	GatewayLocal  = "local"

	GeminiModelName               = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel          = "gemini-embedding-001"
	EmbeddingOutputDimensionality = int32(1536)
	OpenAIEmbeddingModel          = "text-embedding-3-small"
	OpenAIChatModel               = "gpt-4o-mini"
	LocalEmbeddingDimension       = 512

	ModelTemperature float32 = 0.2
	ModelContext             = "You are a helpful assistant answering questions from the provided document passages only. Cite nothing that is not in the passages. If the passages do not contain the answer, say you don't know."

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort
	RedisDB   = 0

	//qdrant mirror
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	QdrantCollection        = "goindex-passages"
	QdrantConnectionTimeout = 10 * time.Second

	//rpc client transport
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	ClientTimeout       = 6 * time.Minute
)
