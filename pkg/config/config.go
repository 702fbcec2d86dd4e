package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Face      FaceConfig
	Biometric BiometricConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env             string // development, staging, production
	Name            string
	LogLevel        string
	DefaultPageSize int
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL    string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MinConns       int
	// LockTimeout espera máxima por un bloqueo de fila (stock, movimiento); 0 sin límite.
	LockTimeout    time.Duration
	AutoMigrate    bool // aplica migraciones pendientes al iniciar la API
	MigrationsPath string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// RedisConfig configuración del almacén de verificaciones faciales.
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// Addr devuelve host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
	// ProxyHeader cabecera con la IP real del cliente (ej. X-Forwarded-For) cuando hay proxy.
	ProxyHeader string
	// SwaggerFile spec generada por swag; la UI en /docs se monta solo si existe.
	SwaggerFile string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FaceConfig reglas de la verificación facial.
type FaceConfig struct {
	VerificationTimeout time.Duration
	ConfidenceThreshold float64 // confianza < umbral = coincidencia
	MinEnrollImages     int
}

// BiometricConfig servicio externo de reconocimiento facial.
type BiometricConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, REDIS_HOST, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo .env o config.env
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:             getString(v, "APP_ENV", "development"),
			Name:            getString(v, "APP_NAME", "almacen-faceid"),
			LogLevel:        getString(v, "LOG_LEVEL", "info"),
			DefaultPageSize: getInt(v, "DEFAULT_PAGE_SIZE", 50),
		},
		DB: DBConfig{
			DatabaseURL:    getString(v, "DATABASE_URL", ""),
			Host:           getString(v, "DB_HOST", "localhost"),
			Port:           getInt(v, "DB_PORT", 5432),
			User:           getString(v, "DB_USER", "postgres"),
			Password:       getString(v, "DB_PASSWORD", ""),
			DBName:         getString(v, "DB_NAME", "almacen"),
			SSLMode:        getString(v, "DB_SSLMODE", "disable"),
			MaxConns:       getInt(v, "DB_MAX_CONNS", 25),
			MinConns:       getInt(v, "DB_MIN_CONNS", 2),
			LockTimeout:    time.Duration(getInt(v, "DB_LOCK_TIMEOUT", 10)) * time.Second,
			AutoMigrate:    getBool(v, "MIGRATIONS_AUTO", false),
			MigrationsPath: getString(v, "MIGRATIONS_PATH", ""),
		},
		Redis: RedisConfig{
			Host:      getString(v, "REDIS_HOST", "localhost"),
			Port:      getInt(v, "REDIS_PORT", 6379),
			Password:  getString(v, "REDIS_PASSWORD", ""),
			DB:        getInt(v, "REDIS_DB", 0),
			KeyPrefix: getString(v, "REDIS_KEY_PREFIX", "faceid:binding:"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "almacen-faceid"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			ProxyHeader: getString(v, "HTTP_PROXY_HEADER", ""),
			SwaggerFile: getString(v, "SWAGGER_FILE", "./docs/swagger.json"),
		},
		Face: FaceConfig{
			VerificationTimeout: time.Duration(getInt(v, "FACE_VERIFICATION_TIMEOUT", 300)) * time.Second,
			ConfidenceThreshold: getFloat(v, "FACE_CONFIDENCE_THRESHOLD", 80),
			MinEnrollImages:     getInt(v, "FACE_MIN_ENROLL_IMAGES", 10),
		},
		Biometric: BiometricConfig{
			URL:     getString(v, "BIOMETRIC_URL", "http://localhost:8500"),
			APIKey:  getString(v, "BIOMETRIC_API_KEY", ""),
			Timeout: time.Duration(getInt(v, "BIOMETRIC_TIMEOUT", 10)) * time.Second,
		},
	}

	if cfg.JWT.Secret == "" && cfg.App.Env == "production" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio en production")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		return n
	}
	return v.GetInt(key)
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return def
		}
		return f
	}
	return v.GetFloat64(key)
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	return v.GetBool(key)
}
