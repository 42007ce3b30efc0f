// Instance is a fake application instance for running the watcher locally.
// It serves a Spring Boot style /actuator/health endpoint whose status can be
// changed at runtime.
//
// Usage:
//
//	go run ./scripts/instance -port 9001 -status UP
//	curl -X PUT -d DOWN http://localhost:9001/status
//
// On startup it prints the instances entry to paste into config.yaml.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/healthwatch/internal/instance"
)

type state struct {
	mu     sync.RWMutex
	status instance.Status
}

func (s *state) get() instance.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *state) set(status instance.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func main() {
	port := flag.Int("port", 9001, "port to listen on")
	status := flag.String("status", string(instance.StatusUp), "initial health status")
	flap := flag.Duration("flap", 0, "toggle between UP and DOWN at this interval (0 disables)")
	flag.Parse()

	initial := instance.Status(strings.ToUpper(*status))
	if !initial.Valid() {
		log.Fatalf("unknown status %q", *status)
	}

	id := uuid.NewString()
	started := time.Now()
	st := &state{status: initial}

	if *flap > 0 {
		go func() {
			for range time.Tick(*flap) {
				if st.get() == instance.StatusUp {
					st.set(instance.StatusDown)
				} else {
					st.set(instance.StatusUp)
				}
				log.Printf("status flapped to %s", st.get())
			}
		}()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/actuator/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("request: method=%s path=%s from=%s", r.Method, r.URL.Path, r.RemoteAddr)

		health := instance.Health{
			Status: st.get(),
			Details: map[string]any{
				"instance": id,
				"uptime":   time.Since(started).Round(time.Second).String(),
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, 64))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		next := instance.Status(strings.ToUpper(strings.TrimSpace(string(body))))
		if !next.Valid() {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		st.set(next)
		log.Printf("status set to %s", next)
		w.WriteHeader(http.StatusNoContent)
	})

	base := fmt.Sprintf("http://localhost:%d", *port)
	fmt.Printf(`instances:
  - id: %q
    uri: %q
    endpoints:
      health: "%s/actuator/health"
`, id, base, base)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting instance %s on %s", id, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
