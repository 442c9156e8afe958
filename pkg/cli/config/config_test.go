package config_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/grc-risk/pkg/cli/config"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := config.ParseLevel(tc.input)
			if tc.wantErr {
				gt.Error(t, err).Is(config.ErrInvalidConfig)
				return
			}
			gt.NoError(t, err)
			gt.V(t, got).Equal(tc.want)
		})
	}
}

func TestLoggerConfigure(t *testing.T) {
	prev := logging.Default()
	t.Cleanup(func() { logging.SetDefault(prev) })

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stderr").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestSlackConfigure(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		n, err := config.NewSlackForTest("", "").Configure()
		gt.NoError(t, err)
		gt.V(t, n).Nil()
	})

	t.Run("partial configuration", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-token", "").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("enabled", func(t *testing.T) {
		n, err := config.NewSlackForTest("xoxb-token", "C123").Configure()
		gt.NoError(t, err).Required()
		gt.V(t, n).NotNil()
	})

	t.Run("token is not logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		logger.Info("config", "slack", config.NewSlackForTest("xoxb-secret", "C123"))
		gt.B(t, strings.Contains(buf.String(), "xoxb-secret")).False()
	})
}

func TestAuthConfigure(t *testing.T) {
	t.Run("no secret disables authentication", func(t *testing.T) {
		uc, err := config.NewAuthForTest("", 7).Configure(nil)
		gt.NoError(t, err).Required()
		gt.B(t, uc.IsNoAuthn()).True()

		actor, err := uc.Authenticate(context.Background(), "")
		gt.NoError(t, err)
		gt.V(t, actor.ID).Equal(int64(7))
	})

	t.Run("negative person id", func(t *testing.T) {
		_, err := config.NewAuthForTest("", -1).Configure(nil)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("secret enables authentication", func(t *testing.T) {
		uc, err := config.NewAuthForTest("s3cret", 0).Configure(nil)
		gt.NoError(t, err).Required()
		gt.B(t, uc.IsNoAuthn()).False()
	})

	t.Run("secret is not logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		logger.Info("config", "auth", config.NewAuthForTest("s3cret", 0))
		gt.B(t, strings.Contains(buf.String(), "s3cret")).False()
	})
}

func TestRepositoryConfigure(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "").Configure(context.Background())
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore requires project id", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "").Configure(context.Background())
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("sqlite", "").Configure(context.Background())
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestClientConfigure(t *testing.T) {
	t.Run("valid url", func(t *testing.T) {
		c, err := config.NewClientForTest("http://localhost:8080", "tok").Configure()
		gt.NoError(t, err)
		gt.V(t, c).NotNil()
	})

	t.Run("blank url", func(t *testing.T) {
		_, err := config.NewClientForTest("", "").Configure()
		gt.Error(t, err)
	})
}
