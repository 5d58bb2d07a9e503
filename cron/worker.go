package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"campuspay/config"
	"campuspay/models"
	"campuspay/services/notification"

	"github.com/hibiken/asynq"
)

// InitNotificationWorker runs the async worker that delivers queued payment
// receipt notifications in the background.
func InitNotificationWorker(notifier notification.Notifier) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypePaymentReceipt, handleReceiptTask(notifier))

	// Start async worker with retry logic.
	go func() {
		log.Println("[NotificationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleReceiptTask(notifier notification.Notifier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var receipt models.ReceiptNotification
		if err := json.Unmarshal(task.Payload(), &receipt); err != nil {
			log.Printf("[NotificationWorker] invalid payload: %v", err)
			return err
		}

		if err := notifier.SendPaymentReceipt(ctx, receipt); err != nil {
			log.Printf("[NotificationWorker] failed to send receipt %s: %v", receipt.ReceiptNo, err)
			return err
		}
		return nil
	}
}
