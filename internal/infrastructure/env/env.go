package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"form-agent/internal/application/port/output"
	"form-agent/internal/domain/entity"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService reads configuration from the process environment after loading
// .env and .env.$APP_ENV from the working directory.
type EnvService struct {
	appEnv string
	loaded []string
}

func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	e := &EnvService{appEnv: appEnv}

	if err := godotenv.Load(".env"); err == nil {
		e.loaded = append(e.loaded, ".env")
	}

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err == nil {
		e.loaded = append(e.loaded, envFile)
	}

	return e
}

func (e *EnvService) AppEnv() string {
	return e.appEnv
}

// Loaded lists the env files that were found, in load order.
func (e *EnvService) Loaded() []string {
	return append([]string(nil), e.loaded...)
}

func (e *EnvService) Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (e *EnvService) Require(key string) (string, error) {
	val := e.Get(key)
	if val == "" {
		return "", fmt.Errorf("environment variable %s is missing", key)
	}
	return val, nil
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if val := e.Get(key); val != "" {
		return val
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDuration accepts Go duration syntax ("1.5s") or a bare number of
// milliseconds.
func (e *EnvService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// LoadDefaults overlays the personal-data environment variables on the
// built-in defaults.
func (e *EnvService) LoadDefaults() entity.Defaults {
	d := entity.BuiltinDefaults()
	d.Email = e.GetWithDefault("TEST_EMAIL", d.Email)
	d.Password = e.GetWithDefault("TEST_PASSWORD", d.Password)
	d.FirstName = e.GetWithDefault("FIRST_NAME", d.FirstName)
	d.LastName = e.GetWithDefault("LAST_NAME", d.LastName)
	d.FullName = e.GetWithDefault("FULL_NAME", d.FullName)
	d.Phone = e.GetWithDefault("PHONE", d.Phone)
	d.Username = e.GetWithDefault("USERNAME", d.Username)
	d.Company = e.GetWithDefault("COMPANY", d.Company)
	d.Address = e.GetWithDefault("ADDRESS", d.Address)
	d.City = e.GetWithDefault("CITY", d.City)
	d.Zip = e.GetWithDefault("ZIP", d.Zip)
	return d
}
