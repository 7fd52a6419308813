// Command ecsconsole is a small demo that seeds a registry with a
// handful of entities and serves it over the console debug protocol
// until interrupted.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/thornglade/ecsvault"
	"github.com/thornglade/ecsvault/console"
)

type position struct{ X, Y float64 }
type velocity struct{ X, Y float64 }

func main() {
	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()
	ecsvault.SetLogger(zl)
	console.SetLogger(zl)

	registry := ecsvault.NewRegistry()
	for i := 0; i < 16; i++ {
		ecsvault.Insert2(registry, position{X: float64(i)}, velocity{X: 1})
	}

	addr := ecsvault.Config.ConsoleListenAddr
	srv := console.NewServer(addr, registry)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			zl.Sugar().Errorw("console server stopped", "error", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	srv.Close()
}
