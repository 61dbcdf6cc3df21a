package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-whitted-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	http3Port := flag.Int("http3-port", 0, "UDP port for HTTP/3 (requires -cert and -key, 0 disables)")
	certFile := flag.String("cert", "", "TLS certificate file")
	keyFile := flag.String("key", "", "TLS private key file")
	scenesDir := flag.String("scenes", "scenes", "Directory of JSON scene files")
	flag.Parse()

	if *http3Port > 0 && (*certFile == "" || *keyFile == "") {
		log.Printf("HTTP/3 disabled: -http3-port needs both -cert and -key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webServer := server.NewServer(server.Config{
		Port:      *port,
		HTTP3Port: *http3Port,
		CertFile:  *certFile,
		KeyFile:   *keyFile,
		ScenesDir: *scenesDir,
	})

	log.Printf("Whitted Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(ctx); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
