// Small interactive client for the duty event stream:
//
//	go run ./scripts/ws_client.go -url ws://localhost:8080/v1/duty-events/ws -driver <id>
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/v1/duty-events/ws", "websocket endpoint")
	driver := flag.String("driver", "", "driver id (empty for all drivers)")
	flag.Parse()

	target := *url
	if *driver != "" {
		target += "?driverId=" + *driver
	}
	conn, _, err := websocket.DefaultDialer.Dial(target, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", target, err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", target)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				fmt.Fprintf(os.Stderr, "read: %v\n", err)
				return
			}
			fmt.Println(string(msg))
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		<-done
	}
}
