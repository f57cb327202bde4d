package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/M3kko/nolimit-dashboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ExportQueueSize, convey.ShouldEqual, 1_000)
				convey.So(cfg.ChartRenderer, convey.ShouldEqual, "gochart")
				convey.So(cfg.KnownSports, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("NOLIMIT_ADDR", ":8080")
			_ = os.Setenv("NOLIMIT_QUEUE_SIZE", "50")
			_ = os.Setenv("NOLIMIT_WORKER_COUNT", "3")
			_ = os.Setenv("NOLIMIT_STRICT_ROSTER", "true")
			_ = os.Setenv("NOLIMIT_KNOWN_SPORTS", "Tennis, Swimming")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ExportQueueSize, convey.ShouldEqual, 50)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.StrictRoster, convey.ShouldBeTrue)
				convey.So(cfg.KnownSports, convey.ShouldResemble, []string{"Tennis", "Swimming"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
queue_size: 300
roster_path: "/etc/nolimit/roster.yaml"
known_sports:
  - Soccer
  - Tennis
default_window: "7d"
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("NOLIMIT_CONFIG", tmpFile)
			_ = os.Setenv("NOLIMIT_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ExportQueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.RosterPath, convey.ShouldEqual, "/etc/nolimit/roster.yaml")
				convey.So(cfg.KnownSports, convey.ShouldResemble, []string{"Soccer", "Tennis"})
				convey.So(cfg.DefaultWindow, convey.ShouldEqual, "7d")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("NOLIMIT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("NOLIMIT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("NOLIMIT_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the chrome renderer has no endpoint", func() {
			_ = os.Setenv("NOLIMIT_CHART_RENDERER", "chrome")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "chrome_url")
		})

		convey.Convey("When the renderer is unknown", func() {
			_ = os.Setenv("NOLIMIT_CHART_RENDERER", "gnuplot")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the default window is not supported", func() {
			_ = os.Setenv("NOLIMIT_DEFAULT_WINDOW", "90d")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("NOLIMIT_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with zero workers", func() {
			_ = os.Setenv("NOLIMIT_WORKER_COUNT", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"NOLIMIT_CONFIG",
		"NOLIMIT_ADDR",
		"NOLIMIT_QUEUE_SIZE",
		"NOLIMIT_WORKER_COUNT",
		"NOLIMIT_STRICT_ROSTER",
		"NOLIMIT_KNOWN_SPORTS",
		"NOLIMIT_CHART_RENDERER",
		"NOLIMIT_DEFAULT_WINDOW",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "nolimit-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
