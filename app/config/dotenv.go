package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	DevEnv  = "dev"
	TestEnv = "test"
	ProdEnv = "prod"
)

// Env returns the runtime environment name, dev when unset.
func Env() string {
	env := os.Getenv("YATUBE_ENV")
	if env == "" {
		env = DevEnv
	}
	return env
}

// LoadDotEnvs loads the .env files found under root. godotenv never
// overrides a variable that is already set, so the files are loaded from
// highest to lowest priority.
func LoadDotEnvs(root string) {
	env := Env()

	// .env.[env].local holds per-machine secrets
	godotenv.Load(root + ".env." + env + ".local")
	if env != TestEnv {
		godotenv.Load(root + ".env.local")
	}
	godotenv.Load(root + ".env." + env)
	// .env holds shared defaults
	godotenv.Load(root + ".env")
}
