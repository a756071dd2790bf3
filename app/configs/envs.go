package configs

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type ENV struct {
	DBHost            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBPort            string
	Port              string
	AppEnv            string
	AppURL            string
	AppAuthKey        string
	AppEncKey         string
	MidtransServerKey string
	MidtransClientKey string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	CartTTLHours      int
	KafkaBrokers      []string
	KafkaTopic        string
	EmailHost         string
	EmailPort         string
	EmailUsername     string
	EmailPassword     string
	EmailFrom         string
	AdminEmail        string
	CurrencySymbol    string
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("WARNING: configs: %s=%q is not a number, using %d", key, raw, fallback)
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func LoadEnv() ENV {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: No .env file found ")
	}

	emailUser := os.Getenv("EMAIL_USERNAME")

	return ENV{
		DBHost:            getEnv("DB_HOST", "127.0.0.1"),
		DBUser:            getEnv("DB_USER", "root"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getEnv("DB_NAME", "storefront"),
		DBPort:            getEnv("DB_PORT", "3306"),
		Port:              getEnv("APP_PORT", ":8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		AppURL:            getEnv("APP_URL", "http://localhost:8080"),
		AppAuthKey:        os.Getenv("APP_AUTH_KEY"),
		AppEncKey:         os.Getenv("APP_ENC_KEY"),
		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey: os.Getenv("MIDTRANS_CLIENT_KEY"),
		RedisAddr:         getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		CartTTLHours:      getEnvInt("CART_TTL_HOURS", 7*24),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "order-events"),
		EmailHost:         os.Getenv("EMAIL_HOST"),
		EmailPort:         getEnv("EMAIL_PORT", "587"),
		EmailUsername:     emailUser,
		EmailPassword:     os.Getenv("EMAIL_PASSWORD"),
		EmailFrom:         getEnv("EMAIL_FROM", emailUser),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		CurrencySymbol:    getEnv("CURRENCY_SYMBOL", "Rp"),
	}
}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production"
}
