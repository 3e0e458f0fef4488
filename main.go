package main

import (
	"emsp/internal/config"
	"emsp/server"
	"flag"
	"log"
)

func main() {
	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	conf, err := config.GetConfig(*configPath)
	if err != nil {
		log.Println("configuration error", err)
		return
	}

	emsp, err := server.NewEmsp(conf)
	if err != nil {
		log.Println("emsp initialization failed", err)
		return
	}
	defer emsp.Close()

	if err = emsp.Start(); err != nil {
		log.Println("callback server stopped", err)
	}
}
