package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort      = ":8080"
	DefaultCacheSize = 256
)

type Config struct {
	Port      string
	CacheSize int
	// Column after which compressed lines are broken, -1 for none.
	LineBreak int
	Verbose   bool
}

// Load reads the server configuration. Flags win over the environment,
// which wins over .env and the defaults.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.String("port", "", "address to listen on (default "+DefaultPort+")")
	cacheSize := fs.String("cache-size", "", "number of compressed results to keep")
	lineBreak := fs.String("line-break", "", "insert a line break after the specified column number")
	verbose := fs.Bool("v", false, "report warnings")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	size, err := parseInt("cache size", firstNonEmpty(*cacheSize, env("SQUEEZE_CACHE_SIZE")), DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}

	lb, err := parseInt("line break", firstNonEmpty(*lineBreak, env("SQUEEZE_LINE_BREAK")), -1)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:      normalizePort(firstNonEmpty(*port, env("SQUEEZE_PORT"), DefaultPort)),
		CacheSize: size,
		LineBreak: lb,
		Verbose:   *verbose || envBool("SQUEEZE_VERBOSE"),
	}, nil
}

func normalizePort(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func parseInt(what, raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, raw, err)
	}
	return v, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(env(key))
	if err != nil {
		return false
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
