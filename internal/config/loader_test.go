package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/matchxg/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 1000)
				convey.So(cfg.HomeName, convey.ShouldEqual, "Home")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MATCHXG_ADDR", ":8080")
			_ = os.Setenv("MATCHXG_TICK_INTERVAL_MS", "250")
			_ = os.Setenv("MATCHXG_CLOCK_GRANULARITY", "minute")
			_ = os.Setenv("MATCHXG_OVER_XG", "3.5")
			_ = os.Setenv("MATCHXG_ALLOWED_ORIGINS", "http://a.local,http://b.local")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 250)
				convey.So(cfg.ClockGranularity, convey.ShouldEqual, "minute")
				convey.So(cfg.OverXG, convey.ShouldEqual, 3.5)
				convey.So(cfg.Origins(), convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempFile("matchxg-config-*.yaml", `
# match defaults
addr: ":9090"
home_name: "Casa"
away_name: "Visitante"
dedupe_size: 0
xg_base_values:
  corner: 0.04
  dangerous_shot: 0.3
late_xg: 2.0
metrics_namespace: stadium
metrics_buckets_ms: [1, 10, 100]
metrics_labels:
  pitch: north
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MATCHXG_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should merge with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.HomeName, convey.ShouldEqual, "Casa")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 0)
				convey.So(cfg.XGBaseValues["corner"], convey.ShouldEqual, 0.04)
				convey.So(cfg.LateGameXG, convey.ShouldEqual, 2.0)
				convey.So(cfg.OverXG, convey.ShouldEqual, 2.5)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "stadium")
				convey.So(cfg.MetricsBucketsMS, convey.ShouldResemble, []float64{1, 10, 100})
				convey.So(cfg.MetricsLabels["pitch"], convey.ShouldEqual, "north")
			})

			convey.Convey("And env should win over the file", func() {
				_ = os.Setenv("MATCHXG_HOME_NAME", "Mandante")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.HomeName, convey.ShouldEqual, "Mandante")
				convey.So(cfg.AwayName, convey.ShouldEqual, "Visitante")
			})
		})

		convey.Convey("When loading config with a dotenv file", func() {
			tmpFile := createTempFile("matchxg-*.env", "MATCHXG_AWAY_NAME=Visitante\nMATCHXG_LOG_FORMAT=json\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MATCHXG_DOTENV", tmpFile)
			_ = os.Setenv("MATCHXG_LOG_FORMAT", "text")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fill unset variables only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AwayName, convey.ShouldEqual, "Visitante")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			})
		})

		convey.Convey("When the dotenv file is missing", func() {
			_ = os.Setenv("MATCHXG_DOTENV", "/nonexistent/matchxg.env")
			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML", func() {
			tmpFile := createTempFile("matchxg-config-*.yaml", "addr: [unclosed\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MATCHXG_CONFIG", tmpFile)

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("MATCHXG_CONFIG", "/nonexistent/config.yaml")
			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric env", func() {
			_ = os.Setenv("MATCHXG_TICK_INTERVAL_MS", "fast")
			_, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When loading config that fails validation", func() {
			_ = os.Setenv("MATCHXG_CLOCK_GRANULARITY", "hour")
			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"MATCHXG_CONFIG",
		"MATCHXG_DOTENV",
		"MATCHXG_ADDR",
		"MATCHXG_TICK_INTERVAL_MS",
		"MATCHXG_CLOCK_GRANULARITY",
		"MATCHXG_OVER_XG",
		"MATCHXG_ALLOWED_ORIGINS",
		"MATCHXG_HOME_NAME",
		"MATCHXG_AWAY_NAME",
		"MATCHXG_LOG_FORMAT",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(pattern, content string) string {
	tmpFile, err := os.CreateTemp("", pattern)
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
