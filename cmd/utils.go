package cmd

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
)

// LoadEnvFile parses flags and, if -env was given, loads that file into the
// process environment. Callers must register their own flags before calling.
func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	if err := godotenv.Load(configPath); err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}
