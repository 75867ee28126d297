// Command achpay-reload asks running achpay servers to reload their payment
// records by publishing a message on the reload queue.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"achpay/internal/amqp"
	"achpay/internal/cli"
	"achpay/internal/config"
	"achpay/internal/log"
)

var (
	reason  = flag.String("reason", "manual", "Reason recorded with the reload request")
	timeout = flag.Duration("timeout", 10*time.Second, "Time allowed to connect and publish")
)

func main() {
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentAMQP)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to publish a reload request")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := client.PublishReload(ctx, *reason); err != nil {
		logger.Error("Failed to publish reload request", log.FieldError, err.Error())
		client.Close()
		os.Exit(1)
	}
	logger.Info("Reload request published", "reason", *reason, "queue", cfg.AMQPQueue)
}
