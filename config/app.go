package config

type App struct {
	Port            string `env:"APP_PORT" default:"8080"`
	DatabaseURL     string `env:"DATABASE_URL,required"`
	JWTSecret       string `env:"JWT_SECRET" default:"local_dev_secret"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
	TelegramToken   string `env:"TELEGRAM_TOKEN"`
	TelegramChatID  string `env:"TELEGRAM_CHAT_ID"`
	Env             string `env:"APP_ENV" default:"dev"`
}
