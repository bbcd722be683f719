// Command zebra-god is the routing daemon: it wires up the RIB/FIB,
// starts the protocol instances a loaded config enables, and serves the
// CLI's gRPC surface until signalled to stop.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/zebra-rs/zebra-go/cli"
	"github.com/zebra-rs/zebra-go/zebrad"
)

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:2650", "address the CLI gRPC server listens on")
	configFile := flag.String("config", "", "configuration file to load and commit at startup")
	flag.Parse()

	log := logrus.WithField("component", "zebra-god")

	daemon := zebrad.NewDaemon()

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			log.WithError(err).Fatal("failed to read config file")
		}
		if err := daemon.LoadConfig(string(data)); err != nil {
			log.WithError(err).Fatal("failed to apply startup config")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := daemon.Run(ctx); err != nil {
			log.WithError(err).Error("daemon run loop exited")
		}
	}()

	lis, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.WithError(err).Fatal("failed to bind CLI listener")
	}

	server := grpc.NewServer()
	cli.RegisterServer(server, daemon)

	go func() {
		log.WithField("addr", *listenAddr).Info("CLI gRPC server listening")
		if err := server.Serve(lis); err != nil {
			log.WithError(err).Error("CLI gRPC server exited")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	server.GracefulStop()
	cancel()
}
