package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Recommender RecommenderConfig
	Search      SearchConfig
	MLAPI       MLAPIConfig
	NLP         NLPConfig
	Store       StoreConfig
	Events      EventsConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Port               string
	Environment        string
	LogFilePath        string
	LogLevel           string
	CorsAllowedOrigins string
}

type RecommenderConfig struct {
	NumberOfWordsIntoQ    int
	MinimumConfidence     float64
	ContextEntitiesWindow int

	UseLongQuery         bool
	UsePreprocessedQuery bool
	UseAnalytics         bool
	UseNearestDocuments  bool
	UseFacetQuestions    bool
}

type SearchConfig struct {
	Addresses       []string
	Username        string
	Password        string
	APIKey          string
	Index           string
	NumberOfResults int
}

type MLAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type NLPConfig struct {
	BaseURL           string
	IrrelevantIntents []string
	Timeout           time.Duration
}

type StoreConfig struct {
	Kind     string // "memory" or "redis"
	Lifespan time.Duration
	RedisURL string
}

type EventsConfig struct {
	NatsURL string
	Topic   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "agent-assist-be"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LogLevel:           getEnv("LOG_LEVEL", ""),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Recommender: RecommenderConfig{
			NumberOfWordsIntoQ:    getEnvAsInt("NUMBER_OF_WORDS_INTO_Q", 15),
			MinimumConfidence:     getEnvAsFloat("MINIMUM_CONFIDENCE", 0),
			ContextEntitiesWindow: getEnvAsInt("CONTEXT_ENTITIES_WINDOW", 10),
			UseLongQuery:          getEnvAsBool("RECOMMENDER_USE_LONG_QUERY", true),
			UsePreprocessedQuery:  getEnvAsBool("RECOMMENDER_USE_PREPROCESSED_QUERY", true),
			UseAnalytics:          getEnvAsBool("RECOMMENDER_USE_ANALYTICS", false),
			UseNearestDocuments:   getEnvAsBool("RECOMMENDER_USE_NEAREST_DOCUMENTS", false),
			UseFacetQuestions:     getEnvAsBool("RECOMMENDER_USE_FACET_QUESTIONS", true),
		},
		Search: SearchConfig{
			Addresses:       getEnvAsList("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:        getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:        getEnv("ELASTICSEARCH_PASSWORD", ""),
			APIKey:          getEnv("ELASTICSEARCH_API_KEY", ""),
			Index:           getEnv("SEARCH_INDEX", "knowledge-base"),
			NumberOfResults: getEnvAsInt("SEARCH_NUMBER_OF_RESULTS", 10),
		},
		MLAPI: MLAPIConfig{
			BaseURL: getEnv("MLAPI_BASE_URL", "http://localhost:5000"),
			Timeout: getEnvAsDuration("MLAPI_TIMEOUT", 10*time.Second),
		},
		NLP: NLPConfig{
			BaseURL:           getEnv("NLP_API_BASE_URL", "http://localhost:5001"),
			IrrelevantIntents: getEnvAsList("NLP_IRRELEVANT_INTENTS", []string{"Greetings"}),
			Timeout:           getEnvAsDuration("NLP_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Kind:     getEnv("CONTEXT_STORE", "memory"),
			Lifespan: getEnvAsDuration("CONTEXT_LIFESPAN", time.Hour),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Events: EventsConfig{
			NatsURL: getEnv("NATS_URL", ""),
			Topic:   getEnv("SUGGESTION_EVENTS_TOPIC", "SUGGESTION_EVENTS"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	out := make([]string, 0)
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
