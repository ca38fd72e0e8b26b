package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/km-arc/canister/framework/app"
	"github.com/km-arc/canister/framework/container"
	gohttp "github.com/km-arc/canister/framework/http"
	"github.com/km-arc/canister/framework/providers"
	"github.com/km-arc/canister/framework/routing"
)

// Greeter is built by the Canister; its parameters come from the
// definitions in examples/wiring.hcl.
type Greeter struct {
	word        string
	punctuation string
}

func NewGreeter(word, punctuation string) *Greeter {
	return &Greeter{word: word, punctuation: punctuation}
}

func (g *Greeter) Greet(name string) string {
	return fmt.Sprintf("%s, %s%s", g.word, name, g.punctuation)
}

// Ticket is registered as a factory: every resolution is a new ticket.
type Ticket struct {
	ID string `json:"id"`
}

func NewTicket() *Ticket { return &Ticket{ID: uuid.NewString()} }

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	application, err := app.New() // loads .env automatically
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if len(application.Config().Manifests) == 0 {
		if err := application.Register(&providers.ManifestServiceProvider{
			Paths: []string{"examples/wiring.hcl"},
		}); err != nil {
			return err
		}
	}

	if _, err := application.Provide(NewGreeter, "word", "punctuation"); err != nil {
		return err
	}
	if _, err := application.Provide(NewTicket); err != nil {
		return err
	}

	r, err := application.Router()
	if err != nil {
		return err
	}

	r.Prefix("/api/v1", func(api *routing.Router) {
		// GET /api/v1/greet/{name}
		api.Get("/greet/{name}", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			greeter, err := container.Resolve[*Greeter](application.Canister, "greeter")
			if err != nil || greeter == nil {
				res.ServerError("greeter is not wired")
				return
			}
			res.Success(map[string]any{"message": greeter.Greet(routing.Param(req, "name"))})
		})

		// POST /api/v1/tickets
		api.Post("/tickets", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)
			ticket, err := container.ResolveType[*Ticket](application.Canister)
			if err != nil {
				res.ServerError(err.Error())
				return
			}
			res.Created(ticket)
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
