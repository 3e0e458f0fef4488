package server

import (
	"emsp/internal"
	"emsp/internal/config"
	"emsp/metrics"
	"emsp/metrics/counters"
	"emsp/ocpi"
	"emsp/ocpi/callback"
	"emsp/ocpi/observer"
	"emsp/telegram"
	"fmt"
	"log"
	"time"
)

// Emsp holds the running parts of the service.
type Emsp struct {
	conf     *config.Config
	client   *ocpi.OCPI
	callback *callback.Server
	api      *Api
	logger   internal.LogHandler
}

func NewEmsp(conf *config.Config) (*Emsp, error) {
	log.Println("set time zone to " + conf.TimeZone)
	location, err := time.LoadLocation(conf.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone initialization failed: %s", err)
	}

	var database internal.Database
	if conf.Mongo.Enabled {
		database, err = internal.NewMongoClient(conf)
		if err != nil {
			return nil, fmt.Errorf("mongodb setup failed: %s", err)
		}
		log.Println("mongodb is configured and enabled")
	} else {
		log.Println("database is disabled")
	}

	logService := internal.NewLogger(location)
	logService.SetDebugMode(conf.IsDebug)
	logService.SetDatabase(database)

	observers := observer.NewList(internal.NewEventLogger(logService, database))

	client := ocpi.New(conf, nil, logService, observers)
	observers.Add(counters.NewObserver(client.Store().Len))

	if conf.Telegram.Enabled {
		telegramBot, err := telegram.NewBot(conf.Telegram.ApiKey, conf.Telegram.ChatIds)
		if err != nil {
			return nil, fmt.Errorf("telegram bot setup failed: %s", err)
		}
		telegramBot.SetLogger(logService)
		telegramBot.Start()
		observers.Add(telegramBot)
		log.Println("telegram bot is configured and enabled")
	}

	callbackServer, err := callback.NewServer(conf, client.Store(), observers)
	if err != nil {
		return nil, fmt.Errorf("callback server setup failed: %s", err)
	}
	callbackServer.SetLogger(logService)
	observers.Add(callbackServer.Feed())

	e := &Emsp{
		conf:     conf,
		client:   client,
		callback: callbackServer,
		logger:   logService,
	}
	if conf.Api.Enabled {
		e.api = NewServerApi(conf, client, logService)
		e.api.SetDatabase(database)
	}
	return e, nil
}

func (e *Emsp) Client() *ocpi.OCPI {
	return e.client
}

// Start runs the optional listeners in the background and blocks on the callback server.
func (e *Emsp) Start() error {
	go func() {
		if err := metrics.Listen(e.conf); err != nil {
			e.logger.Error("metrics server", err)
		}
	}()
	if e.api != nil {
		go func() {
			if err := e.api.Start(); err != nil {
				e.logger.Error("api server", err)
			}
		}()
	}
	return e.callback.Start()
}

func (e *Emsp) Close() {
	if e.api != nil {
		_ = e.api.Close()
	}
	_ = e.callback.Close()
	e.client.Close()
}
