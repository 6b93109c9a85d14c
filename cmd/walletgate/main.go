package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"flag"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/fedwallet/walletgate/adapters/events"
	"github.com/fedwallet/walletgate/adapters/ledger"
	"github.com/fedwallet/walletgate/adapters/nonce"
	"github.com/fedwallet/walletgate/adapters/provisioner"
	"github.com/fedwallet/walletgate/config"
	"github.com/fedwallet/walletgate/metrics"
	"github.com/fedwallet/walletgate/ports"
	"github.com/fedwallet/walletgate/service"
	transport "github.com/fedwallet/walletgate/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Generate a signing key for session tokens (you would normally load
	// this from somewhere secure).
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		logger.Error("failed to generate signing key", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	wmLogger := watermill.NewSlogLogger(logger)

	var (
		nonceStore   ports.NonceStore
		accountStore ports.Ledger
		publisher    message.Publisher
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse Redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			logger.Error("failed to create Redis publisher", "error", err)
			os.Exit(1)
		}

		nonceStore = nonce.NewRedisStore(redisClient, cfg.ServerName,
			nonce.WithRedisTTL(cfg.Auth.ChallengeTTL.Std()))
		accountStore = ledger.NewRedisLedger(redisClient)
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		nonceStore = nonce.NewMemoryStore(cfg.ServerName,
			nonce.WithTTL(cfg.Auth.ChallengeTTL.Std()),
			nonce.WithCapacity(cfg.Auth.MaxNonces),
			nonce.WithEvictionHook(func(n int) { m.NoncesEvicted.Add(float64(n)) }),
		)
		accountStore = ledger.NewMemoryLedger()
	}

	eventPub := events.NewWatermillPublisher(publisher)

	accounts := provisioner.NewLocalProvisioner(signKey, cfg.ServerName,
		provisioner.WithAccessTTL(cfg.Provisioner.AccessTTL.Std()),
		provisioner.WithAutoJoinRoom(cfg.Provisioner.AutoJoinRoom),
	)

	authService := service.NewAuthService(nonceStore, accounts, eventPub, logger, cfg.AuthEnabled())
	directoryService := service.NewDirectoryService(accountStore, eventPub, logger)

	router := transport.SetupRouter(authService, directoryService, m, transport.RouterConfig{
		ChallengeRPS:   cfg.Auth.ChallengeRPS,
		ChallengeBurst: cfg.Auth.ChallengeBurst,
	})

	logger.Info("starting walletgate", "listen", cfg.Listen, "server_name", cfg.ServerName)
	if err := router.Run(cfg.Listen); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
