// cmd/historian is an asynchronous service that pops action and match records
// from the Redis queues and persists them to PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/blitzuno/blitzuno/internal/database"
	"github.com/blitzuno/blitzuno/internal/room"
)

// HistorianService drains the action queue into batched inserts and the match
// queue into individual upserts.
type HistorianService struct {
	redisClient *redis.Client
	batchSize   int
	flushDelay  time.Duration

	batchMu  sync.Mutex
	batch    []room.ActionRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorianService constructs a HistorianService from environment variables or defaults.
func NewHistorianService() *HistorianService {
	batchSize := getEnvInt("HISTORIAN_BATCH_SIZE", 20)
	flushMs := getEnvInt("HISTORIAN_FLUSH_MS", 500)

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &HistorianService{
		redisClient: rdb,
		batchSize:   batchSize,
		flushDelay:  time.Duration(flushMs) * time.Millisecond,
		batch:       make([]room.ActionRecord, 0, batchSize),
		ctx:         ctx,
		cancelFn:    cancel,
	}
}

// Run connects to the database and starts the queue loops, blocking until Stop.
func (hs *HistorianService) Run() {
	database.ConnectDB()

	go hs.readActionsLoop()
	go hs.readMatchesLoop()

	log.Println("blitzuno-historian service started.")
	<-hs.ctx.Done()
	hs.flushBatchToDB()
	log.Println("blitzuno-historian shutting down.")
}

// readActionsLoop continuously pops action records, accumulating them into a
// batch that flushes on size or on the flush timer.
func (hs *HistorianService) readActionsLoop() {
	ticker := time.NewTicker(hs.flushDelay)
	defer ticker.Stop()

	queueName := getEnv("HISTORIAN_ACTION_QUEUE", "blitzuno_actions")

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is handled.
			res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if hs.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop %s: %v\n", queueName, err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var rec room.ActionRecord
			if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
				log.Printf("invalid action record: %v\n", err)
				continue
			}
			hs.appendToBatch(rec)
		}
	}
}

// readMatchesLoop persists finished-match records as they arrive.
func (hs *HistorianService) readMatchesLoop() {
	queueName := getEnv("HISTORIAN_MATCH_QUEUE", "blitzuno_matches")

	for {
		select {
		case <-hs.ctx.Done():
			return
		default:
		}

		res, err := hs.redisClient.BLPop(hs.ctx, 3*time.Second, queueName).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if hs.ctx.Err() != nil {
				return
			}
			log.Printf("[ERROR] BLPop %s: %v\n", queueName, err)
			continue
		}
		if len(res) < 2 {
			continue
		}

		var rec room.MatchRecord
		if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
			log.Printf("invalid match record: %v\n", err)
			continue
		}
		if err := database.RecordMatch(context.Background(), rec); err != nil {
			log.Printf("[ERROR] record match %s: %v\n", rec.GameID, err)
		}
	}
}

// appendToBatch adds a record to the in-memory batch and flushes if the threshold is reached.
func (hs *HistorianService) appendToBatch(rec room.ActionRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, rec)
	if len(hs.batch) >= hs.batchSize {
		hs.flushBatchToDBLocked()
	}
}

// flushBatchToDB flushes the current batch to the database in a single transaction.
func (hs *HistorianService) flushBatchToDB() {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushBatchToDBLocked()
}

// flushBatchToDBLocked assumes batchMu is held.
func (hs *HistorianService) flushBatchToDBLocked() {
	if len(hs.batch) == 0 {
		return
	}
	batchCopy := make([]room.ActionRecord, len(hs.batch))
	copy(batchCopy, hs.batch)
	hs.batch = hs.batch[:0]

	if err := database.InsertActionRecords(context.Background(), batchCopy); err != nil {
		log.Printf("[ERROR] flushBatchToDB: %v\n", err)
	} else {
		log.Printf("Flushed %d actions to DB.\n", len(batchCopy))
	}
}

// Stop gracefully stops the historian service.
func (hs *HistorianService) Stop() {
	hs.cancelFn()
}

func main() {
	hs := NewHistorianService()
	go hs.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	hs.Stop()
	log.Println("Historian shutdown complete.")
}

// getEnv retrieves an environment variable's value or returns a default.
func getEnv(key, defVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defVal
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
