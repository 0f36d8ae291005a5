// Command intentctl talks to a running intent service. When the service is
// unreachable, classify answers with the keyword rules.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/themobileprof/helpdesk-intent/internal/intent"
	"github.com/themobileprof/helpdesk-intent/pkg/intentclient"
)

type args struct {
	url     string
	token   string
	timeout time.Duration
	active  bool
	verbose bool
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: intentctl [flags] <command>

commands:
  health                 check whether the service is up
  classify <text...>     classify a message
  train <file.json|->    send {"examples":[...]} or [...] for retraining

flags:
`)
	flag.PrintDefaults()
}

func main() {
	var a args
	flag.StringVar(&a.url, "url", envOr("INTENT_SERVICE_URL", intentclient.DefaultBaseURL), "Intent service base URL")
	flag.StringVar(&a.token, "token", os.Getenv("INTENT_ADMIN_TOKEN"), "Admin bearer token for train")
	flag.DurationVar(&a.timeout, "timeout", 3*time.Second, "Request timeout")
	flag.BoolVar(&a.active, "active-ticket", false, "Classify as if the user has an open ticket")
	flag.BoolVar(&a.verbose, "v", false, "Log client diagnostics to stderr")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if a.verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	client := intentclient.New(intentclient.Config{
		BaseURL:    a.url,
		Timeout:    a.timeout,
		AdminToken: a.token,
		Logger:     logger,
	})

	if err := run(context.Background(), client, a, flag.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "intentctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *intentclient.Client, a args, argv []string, stdin io.Reader, stdout io.Writer) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	switch cmd, rest := argv[0], argv[1:]; cmd {
	case "health":
		up := client.CheckAvailability(ctx)
		if err := enc.Encode(map[string]bool{"available": up}); err != nil {
			return err
		}
		if !up {
			return fmt.Errorf("service at %s is unavailable", a.url)
		}
		return nil

	case "classify":
		text := strings.Join(rest, " ")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("classify needs a message")
		}
		client.CheckAvailability(ctx)
		res := client.Classify(ctx, text, a.active)
		return enc.Encode(struct {
			intentclient.Classification
			Source intentclient.Source `json:"source"`
		}{res, res.Source})

	case "train":
		if len(rest) != 1 {
			return fmt.Errorf("train needs exactly one file (or - for stdin)")
		}
		examples, err := readExamples(rest[0], stdin)
		if err != nil {
			return err
		}
		result, err := client.Retrain(ctx, examples)
		if err != nil {
			return err
		}
		return enc.Encode(result)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// readExamples accepts either a bare array or the /train request body
func readExamples(path string, stdin io.Reader) ([]intent.Example, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read examples: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var examples []intent.Example
		if err := json.Unmarshal(data, &examples); err != nil {
			return nil, fmt.Errorf("failed to parse examples: %w", err)
		}
		return examples, nil
	}

	var body struct {
		Examples []intent.Example `json:"examples"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("failed to parse examples: %w", err)
	}
	return body.Examples, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
