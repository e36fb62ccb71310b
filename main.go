package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/evidware/case-api/api/handlers"
	"github.com/evidware/case-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { //initialize database and router
		log.Fatal(err)
	}

	port := os.Getenv("PORT")
	baseURL := os.Getenv("BASE_URL")
	zap.S().Infow("case-api is up and running",
		"port", port,
		"url", baseURL,
	)
	// No read/write timeouts on the server: vision-model calls can run for
	// tens of seconds and each request is awaited synchronously.
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", port), a.Router))
}
