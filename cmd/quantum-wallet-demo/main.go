package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/quantumauth-io/quantum-go-utils/log"

	quantumwalletdemo "github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	terminalLogin := flag.Bool("login", false, "sign in from the terminal and print a page link")
	email := flag.String("email", "", "default email for -login")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := quantumwalletdemo.Run(ctx, quantumwalletdemo.BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}, quantumwalletdemo.RunOptions{
		TerminalLogin: *terminalLogin,
		Email:         *email,
	})
	if err != nil {
		log.Fatal("quantum-wallet-demo failed", "error", err)
	}
}
