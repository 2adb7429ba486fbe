package main

import (
	"flag"
	"net/http"

	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/authority"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer log.Sync()

	s := authority.New(log)
	log.Info("stub authority listening", zap.String("addr", *addr), zap.String("token", s.Token()))
	if err := http.ListenAndServe(*addr, s.Routes()); err != nil {
		log.Fatal("listen failed", zap.Error(err))
	}
}
