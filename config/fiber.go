package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

func GetFiberListenAddress() string {
	return fmt.Sprintf("%s:%s", GetFiberHttpHost(), GetFiberHttpPort())
}

func GetFiberConfig() fiber.Config {
	return fiber.Config{
		AppName:       GetAppName(),
		ServerHeader:  "SCHOOLMS",
		CaseSensitive: true,
		JSONEncoder:   sonic.Marshal,
		JSONDecoder:   sonic.Unmarshal,
		ReadTimeout:   httpTimeout(),
		WriteTimeout:  httpTimeout(),
		BodyLimit:     1 << 20,
	}
}

// httpTimeout is tunable because the diagnostic scans answer slowly on large
// tenants.
func httpTimeout() time.Duration {
	if raw := os.Getenv("HTTP_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 60 * time.Second
}

func GetAppName() string {
	if v := os.Getenv("APP_NAME"); v != "" {
		return v
	}
	return "SCHOOLMS"
}

func GetFiberHttpHost() string {
	if env := os.Getenv("HTTP_HOST"); env != "" {
		return env
	}
	return "0.0.0.0"
}

func GetFiberHttpPort() string {
	if env := os.Getenv("HTTP_PORT"); env != "" {
		return env
	}
	return "8000"
}
