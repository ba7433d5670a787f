package config

import "os"

type Config struct {
	// Postgres connection string for the secret store. If empty, walletd
	// runs with an in-memory secret store and credentials do not survive a
	// restart.
	DatabaseUrl string

	// Hex encoded private key used to seal secret store values at rest.
	// Generate one with `walletd genkey`.
	SecretKey string

	// Base url of a mempool.space compatible api used for fee estimation.
	// If empty, a fixed confirmation target is used instead.
	MempoolApiBaseUrl string

	// Fee strategy to use when estimating fee rates: fastest, halfhour,
	// hour, economy or minimum. Defaults to economy.
	FeeStrategy string

	// Base url of the fiat price ticker api.
	RatesApiBaseUrl string
}

func LoadConfig() *Config {
	feeStrategy := os.Getenv("FEE_STRATEGY")
	if feeStrategy == "" {
		feeStrategy = "economy"
	}

	return &Config{
		DatabaseUrl:       os.Getenv("DATABASE_URL"),
		SecretKey:         os.Getenv("SECRET_KEY"),
		MempoolApiBaseUrl: os.Getenv("MEMPOOL_API_BASE_URL"),
		FeeStrategy:       feeStrategy,
		RatesApiBaseUrl:   os.Getenv("RATES_API_BASE_URL"),
	}
}
