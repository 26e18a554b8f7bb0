package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Port           string `mapstructure:"PORT"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`

	AccessSecret  string `mapstructure:"ACCESS_SECRET"`
	RefreshSecret string `mapstructure:"REFRESH_SECRET"`

	OpenAIKey   string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel string `mapstructure:"OPENAI_MODEL"`

	RazorpayKeyID     string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `mapstructure:"RAZORPAY_KEY_SECRET"`

	SendGridKey string `mapstructure:"SENDGRID_API_KEY"`
	SenderEmail string `mapstructure:"SENDER_EMAIL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// Единая таймзона приложения для всех календарных расчетов.
	AppTimezone string `mapstructure:"APP_TIMEZONE"`

	WatchThresholdSeconds int `mapstructure:"WATCH_THRESHOLD_SECONDS"`
	LessonXP              int `mapstructure:"LESSON_XP"`
	ExamXP                int `mapstructure:"EXAM_XP"`
	DailyLoginXP          int `mapstructure:"DAILY_LOGIN_XP"`
	WelcomeXP             int `mapstructure:"WELCOME_XP"`
	ChatMessageCost       int `mapstructure:"CHAT_MESSAGE_COST"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	// ВАЖНО: Явно биндим переменные, чтобы Viper их видел без файла
	viper.BindEnv("PORT")
	viper.BindEnv("ALLOWED_ORIGINS")
	viper.BindEnv("DB_HOST")
	viper.BindEnv("DB_PORT")
	viper.BindEnv("DB_USER")
	viper.BindEnv("DB_PASSWORD")
	viper.BindEnv("DB_NAME")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("ACCESS_SECRET")
	viper.BindEnv("REFRESH_SECRET")
	viper.BindEnv("OPENAI_API_KEY")
	viper.BindEnv("OPENAI_MODEL")
	viper.BindEnv("RAZORPAY_KEY_ID")
	viper.BindEnv("RAZORPAY_KEY_SECRET")
	viper.BindEnv("SENDGRID_API_KEY")
	viper.BindEnv("SENDER_EMAIL")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("APP_TIMEZONE")
	viper.BindEnv("WATCH_THRESHOLD_SECONDS")
	viper.BindEnv("LESSON_XP")
	viper.BindEnv("EXAM_XP")
	viper.BindEnv("DAILY_LOGIN_XP")
	viper.BindEnv("WELCOME_XP")
	viper.BindEnv("CHAT_MESSAGE_COST")

	viper.SetDefault("PORT", ":8080")
	viper.SetDefault("APP_TIMEZONE", "UTC")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("WATCH_THRESHOLD_SECONDS", 60)
	viper.SetDefault("LESSON_XP", 25)
	viper.SetDefault("EXAM_XP", 50)
	viper.SetDefault("DAILY_LOGIN_XP", 10)
	viper.SetDefault("WELCOME_XP", 50)
	viper.SetDefault("CHAT_MESSAGE_COST", 5)

	// Пытаемся прочитать файл, но не умираем, если его нет
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	return
}
