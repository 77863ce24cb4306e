package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"church-hub/internal/client"
	"church-hub/internal/models"
)

// A headless display surface: connects to a church-hub server, mirrors the
// presentation state and logs every accepted snapshot. Useful for smoke
// testing the fan-out channel without a rendering front end.
func main() {
	serverURL := flag.String("server", "http://127.0.0.1:3000", "base URL of the church-hub server")
	name := flag.String("name", "headless-display", "client name sent in the register message")
	flag.Parse()

	c := client.New(*serverURL, *name, "1.0.0")
	c.OnState(func(state *models.PresentationState) {
		log.Printf("State: presenting=%v hidden=%v temporary=%v updatedAt=%d",
			state.IsPresenting, state.IsHidden, describeTemporary(state.TemporaryContent), state.UpdatedAt)
	})

	c.Start()
	defer c.Stop()
	log.Printf("Watching %s as %q", *serverURL, *name)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("Shutting down")
}

func describeTemporary(tc *models.TemporaryContent) string {
	if tc == nil {
		return "none"
	}
	return string(tc.Type)
}
