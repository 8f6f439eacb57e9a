//go:build ignore

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var model, host, port string
	// Accept the subset of llama-server flags the engine passes.
	flag.StringVar(&model, "m", "", "model path")
	flag.StringVar(&host, "host", "127.0.0.1", "host")
	flag.StringVar(&port, "port", "0", "port")
	flag.Int("c", 0, "ctx size")
	flag.Int("t", 0, "threads")
	ngl := flag.Int("ngl", 0, "gpu layers")
	cont := flag.Bool("cont-batching", false, "continuous batching")
	flag.Parse()

	if os.Getenv("FAKE_LLAMA_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "failed to load model")
		os.Exit(3)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/env", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(os.Getenv(r.URL.Query().Get("key"))))
	})
	mux.HandleFunc("/args", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "m=%s ngl=%d cont=%v", model, *ngl, *cont)
	})

	srv := &http.Server{Addr: host + ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
