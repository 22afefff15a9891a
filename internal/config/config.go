package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required values are enforced by must()
// and abort startup when missing; everything else falls back to a sane
// default so a bare development environment still boots.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	SessionTTLHours int    // server-side session lifetime in hours
	GoogleClientID  string // OAuth client id the ID token audience must match
	AdminEmail      string // reserved administrative identity
	AdminUsername   string // admin credential login username
	AdminPassword   string // admin credential login password (plain, optional)
	AdminPassHash   string // bcrypt hash alternative to AdminPassword (optional)
	BunnyZone       string // BunnyCDN storage zone name
	BunnyAPIKey     string // BunnyCDN storage AccessKey
	BunnyCDNHost    string // public CDN hostname serving uploaded files
}

// Load reads configuration from the environment. A .env file is applied
// first when present, matching how the service is run in development.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	return Config{
		Env:             envStr("APP_ENV", "dev"),
		Port:            envStr("APP_PORT", "8080"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		SessionTTLHours: envInt("SESSION_TTL_HOURS", 72),
		GoogleClientID:  must("GOOGLE_CLIENT_ID"),
		AdminEmail:      envStr("ADMIN_EMAIL", "admin@system.local"),
		AdminUsername:   os.Getenv("ADMIN_USERNAME"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AdminPassHash:   os.Getenv("ADMIN_PASSWORD_HASH"),
		BunnyZone:       must("BUNNY_STORAGE_ZONE"),
		BunnyAPIKey:     must("BUNNY_API_KEY"),
		BunnyCDNHost:    must("BUNNY_CDN_HOSTNAME"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}
