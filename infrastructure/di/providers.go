package di

import (
	"context"
	"net/http"
	"time"

	"chirp/application/ports"
	"chirp/application/services"
	"chirp/infrastructure/config"
	"chirp/infrastructure/media/s3"
	"chirp/infrastructure/messaging/eventbridge"
	chirpdynamodb "chirp/infrastructure/persistence/dynamodb"
	"chirp/infrastructure/persistence/traced"
	"chirp/interfaces/http/rest"
	"chirp/pkg/auth"
	"chirp/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/wire"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProviderSet is the wire provider set for the whole application
var ProviderSet = wire.NewSet(
	config.LoadConfig,
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideS3Client,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideTracerProvider,
	ProvideTokenService,
	ProvideUserRepository,
	ProvidePostRepository,
	ProvideNotificationRepository,
	ProvideMediaStore,
	ProvideEventPublisher,
	services.NewAuthService,
	services.NewNotificationService,
	services.NewUserService,
	services.NewPostService,
	ProvideRouter,
	ProvideContainer,
)

// ProvideLogger builds the zap logger for the configured environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig loads the default AWS configuration
func ProvideAWSConfig(cfg *config.Config) (aws.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
}

// sharedHTTPClient keeps connections alive across warm Lambda invocations
func sharedHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DisableKeepAlives:   false,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// ProvideDynamoDBClient creates the DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		o.HTTPClient = sharedHTTPClient()
		o.RetryMaxAttempts = 3
		o.RetryMode = aws.RetryModeAdaptive
	})
}

// ProvideS3Client creates the S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.HTTPClient = sharedHTTPClient()
	})
}

// ProvideEventBridgeClient creates the EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg, func(o *awseventbridge.Options) {
		o.HTTPClient = sharedHTTPClient()
		o.RetryMaxAttempts = 3
	})
}

// ProvideCloudWatchClient creates the CloudWatch client, or nil when
// metrics are disabled; the metrics facade treats nil as a no-op sink
func ProvideCloudWatchClient(awsCfg aws.Config, cfg *config.Config) *awscloudwatch.Client {
	if !cfg.EnableMetrics {
		return nil
	}
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the metrics facade
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	return observability.NewMetrics(cfg.MetricsNamespace, client, logger)
}

// ProvideTracerProvider initializes tracing when enabled.
// Startup survives an unreachable collector; tracing is just absent.
func ProvideTracerProvider(cfg *config.Config, logger *zap.Logger) *observability.TracerProvider {
	if !cfg.EnableTracing {
		return nil
	}
	tp, err := observability.InitTracing("chirp", cfg.Environment, cfg.TracingEndpoint)
	if err != nil {
		logger.Warn("failed to initialize tracing", zap.Error(err))
		return nil
	}
	return tp
}

// ProvideTokenService creates the session token service
func ProvideTokenService(cfg *config.Config) *auth.TokenService {
	return auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
}

// ProvideUserRepository creates the DynamoDB-backed user repository
func ProvideUserRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UserRepository {
	return chirpdynamodb.NewUserRepository(client, cfg.DynamoDBTable, cfg.UsernameIndex, cfg.EmailIndex, logger)
}

// ProvidePostRepository creates the DynamoDB-backed post repository,
// wrapped with tracing when a tracer is up
func ProvidePostRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger, tp *observability.TracerProvider) ports.PostRepository {
	repo := chirpdynamodb.NewPostRepository(client, cfg.DynamoDBTable, cfg.UsernameIndex, cfg.EmailIndex, logger)
	if tp != nil {
		repo = traced.WrapPostRepository(repo, tp.Tracer())
	}
	return repo
}

// ProvideNotificationRepository creates the DynamoDB-backed notification repository
func ProvideNotificationRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.NotificationRepository {
	return chirpdynamodb.NewNotificationRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideMediaStore creates the S3-backed media store
func ProvideMediaStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.MediaStore {
	return s3.NewMediaStore(client, cfg.MediaBucket, cfg.AWSRegion, logger)
}

// ProvideEventPublisher creates the EventBridge publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideRouter builds the configured HTTP handler
func ProvideRouter(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
	tokens *auth.TokenService,
	users ports.UserRepository,
	authService *services.AuthService,
	userService *services.UserService,
	postService *services.PostService,
	notificationService *services.NotificationService,
) http.Handler {
	return rest.NewRouter(cfg, logger, metrics, tokens, users, authService, userService, postService, notificationService).Setup()
}

// ProvideContainer bundles the wired application
func ProvideContainer(cfg *config.Config, logger *zap.Logger, router http.Handler, tp *observability.TracerProvider) *Container {
	return &Container{
		Config: cfg,
		Logger: logger,
		Router: router,
		Tracer: tp,
	}
}
