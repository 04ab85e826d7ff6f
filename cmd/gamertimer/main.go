package main

import (
	"github.com/alecthomas/kong"
)

const (
	appName = "GamerTimer"
	appID   = "com.gamertimer.app"
)

func main() {
	var flags cli
	kctx := kong.Parse(&flags,
		kong.Name("gamertimer"),
		kong.Description("Countdown timers with detachable always-on-top overlays."),
		kong.UsageOnError(),
	)

	kctx.FatalIfErrorf(run(flags))
}
