package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/joho/godotenv"

	"gwmap/viewer"
)

func loadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatal(err)
	}
}

func getDataURL() string {
	url, _ := os.LookupEnv("GWMAP_DATA_URL")
	if url == "" {
		log.Fatal("Could not find map data source! Make sure it's set with 'GWMAP_DATA_URL'")
	}

	return url
}

func main() {
	loadEnv()

	fmt.Printf("Loaded ENV. Starting viewer with %d threads.\n", runtime.GOMAXPROCS(-1))
	viewer.Run(getDataURL())
}
