package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"migstate/pkg/migstate"
)

var CLI struct {
	Name            string `help:"Name of the state key." default:"keyname"`
	State           string `help:"Desired state of the stage." enum:"started,completed" default:"started"`
	StateFile       string `help:"Path (local) or object key (s3) of the state file." required:""`
	StateBackend    string `help:"Storage backend for the state file." enum:"local,s3,redis" default:"local"`
	StateBucketName string `help:"S3 bucket holding the state file."`
	RedisURL        string `help:"Redis connection URL." default:"redis://localhost:6379/0"`
	ReadState       bool   `help:"Only report the stored state, never record a new one."`
	Verbose         bool   `short:"v" help:"Enable verbose logging."`
}

// result mirrors the module's caller contract: the stage name, its final
// state, and whether this invocation changed the ledger.
type result struct {
	Name    string          `json:"name"`
	State   migstate.Status `json:"state"`
	Changed bool            `json:"changed"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("migstate"),
		kong.Description("Marks workflow stages started or completed in a persistent state file, so reruns can skip completed stages."),
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	ctx := context.Background()

	logLevel := slog.LevelWarn
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	backend, err := buildBackend(ctx)
	if err != nil {
		return err
	}

	store := migstate.NewStore(backend,
		migstate.WithObserver(migstate.NewSlogObserver(logger, logLevel)),
	)

	if _, err := store.EnsureInitialized(ctx); err != nil {
		return describe(err)
	}

	var res result
	res.Name = CLI.Name

	if CLI.ReadState {
		res.State, res.Changed, err = store.ReadOnlyGet(ctx, CLI.Name)
	} else {
		res.State, res.Changed, err = store.Set(ctx, CLI.Name, migstate.Status(CLI.State))
	}
	if err != nil {
		return describe(err)
	}

	out, err := json.Marshal(res)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func buildBackend(ctx context.Context) (migstate.Backend, error) {
	switch CLI.StateBackend {
	case "local":
		return migstate.NewLocalBackend(CLI.StateFile), nil

	case "s3":
		if CLI.StateBucketName == "" {
			return nil, errors.New("--state-bucket-name is required for the s3 backend")
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return migstate.NewS3Backend(s3.NewFromConfig(cfg), CLI.StateBucketName, CLI.StateFile), nil

	case "redis":
		return migstate.NewRedisBackendFromURL(CLI.RedisURL, "", CLI.StateFile)

	default:
		return nil, fmt.Errorf("unknown state backend %q", CLI.StateBackend)
	}
}

// describe separates "the document is corrupt" from "storage is
// unreachable" so the workflow engine can decide whether to abort
// everything or treat the step as unknown.
func describe(err error) error {
	var malformed *migstate.MalformedDocumentError
	if errors.As(err, &malformed) {
		return fmt.Errorf("state file is unreadable or corrupt (will not be replaced automatically): %w", err)
	}

	var unavailable *migstate.BackendUnavailableError
	if errors.As(err, &unavailable) {
		return fmt.Errorf("state storage is unreachable: %w", err)
	}

	return err
}
