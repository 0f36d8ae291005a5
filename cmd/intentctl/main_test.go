package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/themobileprof/helpdesk-intent/internal/intent"
	"github.com/themobileprof/helpdesk-intent/pkg/intentclient"
)

func TestReadExamples(t *testing.T) {
	want := intent.Example{Text: "olá pessoal", Intent: intent.Greeting}

	for name, input := range map[string]string{
		"bare array":   `[{"text":"olá pessoal","intent":"greeting"}]`,
		"request body": `{"examples":[{"text":"olá pessoal","intent":"greeting"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := readExamples("-", strings.NewReader(input))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 1 || got[0] != want {
				t.Errorf("readExamples = %+v", got)
			}
		})
	}

	if _, err := readExamples("-", strings.NewReader("not json")); err == nil {
		t.Error("expected parse error")
	}
}

func TestRun_ClassifyFallsBackToRules(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	a := args{url: url, timeout: 500 * time.Millisecond}
	client := intentclient.New(intentclient.Config{BaseURL: url, Timeout: a.timeout})

	var out bytes.Buffer
	if err := run(context.Background(), client, a, []string{"classify", "bom", "dia"}, nil, &out); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"intent": "greeting"`, `"source": "rules"`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %s missing %s", out.String(), want)
		}
	}

	if err := run(context.Background(), client, a, []string{"health"}, nil, &out); err == nil {
		t.Error("health should fail against a closed server")
	}
	if err := run(context.Background(), client, a, []string{"bogus"}, nil, &out); err == nil {
		t.Error("unknown command should fail")
	}
}
