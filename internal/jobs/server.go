package jobs

import (
	"github.com/hibiken/asynq"

	"simbi_backend/internal/logger"
)

// JobServer consumes tasks enqueued by AsynqDispatcher.
type JobServer struct {
	server   *asynq.Server
	handlers *Handlers
}

func NewJobServer(redisOpt asynq.RedisClientOpt, concurrency int, handlers *Handlers) *JobServer {
	if concurrency <= 0 {
		concurrency = 10
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		Logger: asynqLogger{},
	})
	return &JobServer{server: server, handlers: handlers}
}

// Start returns once the workers are running.
func (s *JobServer) Start() error {
	logger.Info("Starting background job server")
	return s.server.Start(s.handlers.Mux())
}

func (s *JobServer) Stop() {
	logger.Info("Stopping background job server")
	s.server.Shutdown()
}

// asynqLogger routes asynq's own logs through the application logger.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { logger.GetLogger().Debug().Msgf("asynq: %v", args...) }
func (asynqLogger) Info(args ...interface{})  { logger.GetLogger().Info().Msgf("asynq: %v", args...) }
func (asynqLogger) Warn(args ...interface{})  { logger.GetLogger().Warn().Msgf("asynq: %v", args...) }
func (asynqLogger) Error(args ...interface{}) { logger.GetLogger().Error().Msgf("asynq: %v", args...) }
func (asynqLogger) Fatal(args ...interface{}) { logger.GetLogger().Fatal().Msgf("asynq: %v", args...) }
