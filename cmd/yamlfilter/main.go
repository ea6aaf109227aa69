package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/fast-yaml-filter/pkg/awsconf"
	"github.com/raywall/fast-yaml-filter/pkg/config"
	"github.com/raywall/fast-yaml-filter/pkg/config/loader"
	"github.com/raywall/fast-yaml-filter/pkg/envloader"
	"github.com/raywall/fast-yaml-filter/pkg/logger"
	"github.com/raywall/fast-yaml-filter/pkg/observability"
	"github.com/raywall/fast-yaml-filter/pkg/output"
	"github.com/raywall/fast-yaml-filter/pkg/pipeline"
	"github.com/raywall/fast-yaml-filter/pkg/transport"
)

// bootEnv são as variáveis lidas antes da configuração do pipeline.
type bootEnv struct {
	ConfigPath string `env:"CONFIG_FILE_PATH,required"`
	AWSRegion  string `env:"AWS_REGION"`
}

var (
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(handler interface{}) { lambda.Start(handler) }
	sqsClient     = func(ctx context.Context) (transport.SQSClient, error) {
		cfg, err := awsconf.Get(ctx, "")
		if err != nil {
			return nil, err
		}
		return sqs.NewFromConfig(cfg), nil
	}
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

func main() {
	var env bootEnv
	if err := envloader.Load(&env); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A primeira chamada fixa a região usada por loader, injector e saídas
	if env.AWSRegion != "" {
		if _, err := awsconf.Get(ctx, env.AWSRegion); err != nil {
			log.Fatalf("FATAL: %v", err)
		}
	}

	if err := run(ctx, env.ConfigPath); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) error {
	cfg, err := loader.Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	logg := logger.Configure(cfg.Service.Logging)

	provider, err := observability.SetupMetrics(cfg.Service.Metrics, cfg.Service.Name)
	if err != nil {
		return fmt.Errorf("falha métricas: %w", err)
	}
	defer provider.Close()

	pipeline.RegisterDefaults()
	p, err := pipeline.New(cfg, pipeline.Deps{
		Logger:  logg,
		Metrics: provider,
	})
	if err != nil {
		return err
	}

	logg.Info().
		Str("service", cfg.Service.Name).
		Str("runtime", cfg.Service.Runtime).
		Int("filters", len(p.Filters())).
		Msg("pipeline inicializado")

	switch cfg.Service.Runtime {
	case config.RuntimeLocal:
		return serverStarter(p)

	case config.RuntimeLambda:
		handler := transport.NewLambdaHandler(p, cfg.Service.GetTimeout(), logg)
		lambdaStarter(handler.Handle)
		return nil

	case config.RuntimeStdin:
		out, err := output.New(ctx, cfg.Output, stdout)
		if err != nil {
			return err
		}
		defer out.Close()
		return transport.NewStdinRunner(p, out, p.Recorder(), logg).Run(ctx, stdin)

	case config.RuntimeSQS:
		out, err := output.New(ctx, cfg.Output, stdout)
		if err != nil {
			return err
		}
		defer out.Close()
		client, err := sqsClient(ctx)
		if err != nil {
			return fmt.Errorf("falha ao criar cliente sqs: %w", err)
		}
		transport.NewSQSConsumer(client, cfg.Input.SQS, p, out, p.Recorder(), logg).Start(ctx)
		return nil
	}

	return fmt.Errorf("runtime desconhecido: %s", cfg.Service.Runtime)
}
