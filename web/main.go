package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/df07/go-bvh-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	webServer := server.NewServer(*port, log)

	log.Info("BVH path tracer web server", "url", "http://localhost:"+flag.Lookup("port").Value.String())
	if err := webServer.Start(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
