package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-pipeline/internal/analysis"
	"resume-pipeline/internal/config"
	"resume-pipeline/internal/metadata"
	"resume-pipeline/internal/metrics"
	"resume-pipeline/internal/pipeline"
	"resume-pipeline/internal/queue"
	"resume-pipeline/internal/storage"
	"resume-pipeline/internal/telemetry"
)

const receiveBatchSize = 10

// messageProcessor is what the poll loop drives; satisfied by
// *pipeline.Processor and by fakes in tests.
type messageProcessor interface {
	ProcessMessage(ctx context.Context, body string) error
}

func main() {
	cfg := config.Load()
	if cfg.QueueURL == "" {
		log.Fatal("RP_SQS_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analysisClient, err := analysis.NewTextractClient(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("analysis client: %v", err)
	}
	store, err := storage.NewS3Store(ctx, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("object store: %v", err)
	}
	metaStore, err := metadata.NewDynamoStore(ctx, cfg.AWSRegion, cfg.TableName)
	if err != nil {
		log.Fatalf("metadata store: %v", err)
	}
	consumer, err := queue.NewSQSConsumer(ctx, cfg.AWSRegion, cfg.QueueURL, cfg.VisibilitySeconds)
	if err != nil {
		log.Fatalf("queue consumer: %v", err)
	}

	proc := pipeline.NewProcessor(analysisClient, store, metaStore, cfg.MalformedPolicy)

	opsServer := startOpsServer(cfg)
	defer shutdownOpsServer(opsServer)

	runPollLoop(ctx, cfg, consumer, proc)
}

func runPollLoop(ctx context.Context, cfg config.Config, consumer queue.Consumer, proc messageProcessor) {
	concurrency := cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	telemetry.Info("worker.started", map[string]any{
		"queue":       cfg.QueueURL,
		"concurrency": concurrency,
		"visibility":  cfg.VisibilitySeconds,
	})

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		messages, err := consumer.Receive(ctx, receiveBatchSize)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("worker.receive_failed", map[string]any{"error": err.Error()})
			continue
		}

		for _, msg := range messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m queue.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				handleMessage(ctx, consumer, proc, m)
			}(msg)
		}
	}

	shutdownTimeout := time.Duration(cfg.ShutdownSeconds) * time.Second
	telemetry.Info("worker.shutdown", map[string]any{"timeout_seconds": cfg.ShutdownSeconds})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Error("worker.shutdown_timeout", map[string]any{"timeout_seconds": cfg.ShutdownSeconds})
	}
}

// handleMessage processes one leased message. A nil processor result
// acknowledges the message; an error leaves it leased so the queue
// redelivers it after the visibility timeout and eventually dead-letters
// it.
func handleMessage(ctx context.Context, consumer queue.Consumer, proc messageProcessor, msg queue.Message) {
	metrics.IncMessagesReceived()
	traceID := uuid.NewString()
	started := time.Now()
	fields := map[string]any{
		"message_id":    msg.ID,
		"receive_count": msg.ReceiveCount,
		"trace_id":      traceID,
	}

	telemetry.Info("worker.message_received", fields)

	if err := proc.ProcessMessage(ctx, msg.Body); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("worker.message_failed", fields)
		return
	}

	metrics.ObserveProcessDurationMs(float64(time.Since(started)) / float64(time.Millisecond))

	if err := consumer.Delete(ctx, msg); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("worker.delete_failed", fields)
		return
	}
	telemetry.Info("worker.message_completed", fields)
}

func startOpsServer(cfg config.Config) *http.Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	srv := &http.Server{Addr: ":" + cfg.OpsPort, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("worker.ops_server_failed", map[string]any{"error": err.Error()})
		}
	}()
	return srv
}

func shutdownOpsServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
