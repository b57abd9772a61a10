package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/medremind/internal/cli"
	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/server"
)

const defaultShutdownTimeout = 10 * time.Second

type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to server.addr in config.yaml, then ${default_addr}."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}
	if addr == "" {
		addr = constants.DefaultServerAddr
	}
	timeout := ctx.Config.Server.ShutdownTimeout
	if timeout == 0 {
		timeout = defaultShutdownTimeout
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving reminders on http://%s (store: %s)\n", addr, ctx.Store.GetConfigPath())
	return server.New(ctx.Adapter, ctx.Settings()).ListenAndServe(sigCtx, addr, timeout)
}
