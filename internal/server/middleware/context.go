package middleware

import (
	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/util"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/ai"
	oai "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/ai/ollama"
	gai "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/ai/openai"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
)

type AppUser struct {
	UserID string
	Role   string
}

type App struct {
	DBConn         *pgxpool.Pool
	Queue          *amqp091.Channel
	Key            *keyfunc.Keyfunc
	AiClient       ai.ContinuityAIClient
	MasterAPIKey   string
	MasterUserID   string
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	key *keyfunc.Keyfunc,
	masterAPIKey string,
	masterUserID string,
	masterUserRole string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			adapter := util.GetEnv("AI_ADAPTER")
			var aiClient ai.ContinuityAIClient

			switch adapter {
			case "ollama":
				client, err := oai.NewContinuityOllamaClient(oai.NewContinuityOllamaClientParams{
					EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
					ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

					BaseURL: util.GetEnv("AI_CHAT_URL"),
					ApiKey:  util.GetEnv("AI_CHAT_KEY"),

					MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
				})
				if err != nil {
					logger.Fatal("Failed to create Ollama client", "err", err)
				}
				aiClient = client
			default:
				aiClient = gai.NewContinuityOpenAIClient(gai.NewContinuityOpenAIClientParams{
					EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
					ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

					EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
					EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
					ChatURL:      util.GetEnv("AI_CHAT_URL"),
					ChatKey:      util.GetEnv("AI_CHAT_KEY"),

					MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
				})
			}

			app := &App{
				DBConn:         db,
				Queue:          queue,
				Key:            key,
				AiClient:       aiClient,
				MasterAPIKey:   masterAPIKey,
				MasterUserID:   masterUserID,
				MasterUserRole: masterUserRole,
			}
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
