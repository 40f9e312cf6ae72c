package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/repairlab/testgen/core"
	"github.com/repairlab/testgen/generator"
	"github.com/repairlab/testgen/oracle/proc"
	"github.com/repairlab/testgen/pkg/cache"
	"github.com/repairlab/testgen/pkg/limiter"
	"github.com/repairlab/testgen/pkg/logging"
	"github.com/repairlab/testgen/pkg/metrics"
	"github.com/repairlab/testgen/pkg/tracing"
	"github.com/repairlab/testgen/source/grammarsrc"
)

func main() {
	_ = godotenv.Load()

	logger, err := logging.NewLogger(logging.Config{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	cfg, err := generator.LoadProfile(getEnv("TESTGEN_PROFILE", "testgen.yaml"), getEnv("TESTGEN_OUT", "./out"))
	if err != nil {
		logger.Error("load profile", "error", err)
		os.Exit(1)
	}
	if seed := os.Getenv("TESTGEN_SEED"); seed != "" {
		cfg.Seed = getEnvInt64("TESTGEN_SEED", cfg.Seed)
	}

	genMetrics := metrics.NewGenerationMetrics(prometheus.DefaultRegisterer)
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("metrics endpoint starting", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics endpoint stopped", "error", err)
			}
		}()
	}

	ctx := context.Background()

	var tracer *tracing.Tracer
	if endpoint := os.Getenv("JAEGER_ENDPOINT"); endpoint != "" {
		tracer, err = tracing.NewTracer(tracing.Config{
			ServiceName:    "testgen",
			ServiceVersion: "dev",
			JaegerEndpoint: endpoint,
			Environment:    getEnv("ENVIRONMENT", "local"),
		})
		if err != nil {
			logger.Error("tracing setup", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tracer.Shutdown(shutdownCtx)
		}()
	}

	grammar, err := grammarsrc.Load(getEnv("TESTGEN_GRAMMAR", "grammar.yaml"))
	if err != nil {
		logger.Error("load grammar", "error", err)
		os.Exit(1)
	}
	source := grammarsrc.New(grammar, rand.New(rand.NewSource(cfg.Seed)))

	oracle, err := buildOracle(logger)
	if err != nil {
		logger.Error("build oracle", "error", err)
		os.Exit(1)
	}

	gen, err := generator.New(cfg, oracle, nil, logger, genMetrics)
	if err != nil {
		logger.Error("construct generator", "error", err)
		os.Exit(1)
	}

	numFailing := getEnvInt("TESTGEN_NUM_FAILING", 5)
	numPassing := getEnvInt("TESTGEN_NUM_PASSING", 5)
	maxIterations := getEnvInt("TESTGEN_MAX_ITERATIONS", generator.DefaultFuzzIterations)

	if tracer != nil {
		runCtx, s := tracer.StartGenerationSpan(ctx, "fuzzer", gen.RunID(), maxIterations)
		err = gen.RunFuzzer(runCtx, source, numFailing, numPassing, maxIterations)
		if err != nil {
			tracing.RecordSpanError(s, err)
		}
		tracing.RecordSpanCounts(s, len(gen.Store().Passing()), len(gen.Store().Failing()), 0)
		s.End()
	} else {
		err = gen.RunFuzzer(ctx, source, numFailing, numPassing, maxIterations)
	}
	if err != nil {
		logger.Error("generation run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("generation finished",
		"passing", len(gen.Store().Passing()),
		"failing", len(gen.Store().Failing()),
		"out", cfg.Out)
}

// buildOracle wires the external oracle command with memoization and,
// optionally, a guard against flaky or slow oracle processes.
func buildOracle(logger *logging.Logger) (core.Oracle, error) {
	cmdline := strings.Fields(getEnv("TESTGEN_ORACLE_CMD", ""))
	if len(cmdline) == 0 {
		return nil, errMissingOracle
	}
	timeout := getEnvDuration("TESTGEN_ORACLE_TIMEOUT", "10s")

	var oracle core.Oracle = proc.New(cmdline[0], cmdline[1:], timeout)

	if rps := getEnvFloat("TESTGEN_ORACLE_RPS", 0); rps > 0 {
		guardCfg := limiter.DefaultConfig()
		guardCfg.RPS = rps
		oracle = limiter.NewGuardedOracle(oracle, guardCfg, rand.New(rand.NewSource(time.Now().UnixNano())))
		logger.Info("oracle rate limiting enabled", "rps", rps)
	}

	return cache.NewMemoizingOracle(oracle, getEnvInt("TESTGEN_ORACLE_CACHE", 4096))
}

var errMissingOracle = &configError{"TESTGEN_ORACLE_CMD must be set"}

type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
