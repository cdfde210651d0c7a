// Command plexilexec runs a small, hard-coded demo plan to quiescence
// against a SimulatedInterface, printing its Mermaid diagram and a
// summary of every node's terminal state.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/plexilrun/plexil/internal/application/executor"
	"github.com/plexilrun/plexil/internal/domain"
	"github.com/plexilrun/plexil/internal/infrastructure/config"
	"github.com/plexilrun/plexil/internal/infrastructure/logger"
	"github.com/plexilrun/plexil/internal/infrastructure/monitoring"
	"github.com/plexilrun/plexil/internal/infrastructure/storage"
	"github.com/plexilrun/plexil/internal/infrastructure/visualization"
	"github.com/plexilrun/plexil/internal/infrastructure/websocket"
)

func main() {
	dashboard := flag.Bool("dashboard", false, "serve a live dashboard over websocket while the plan runs")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogJSON)

	log.Info().Msg("building demo plan")
	plan := buildDemoPlan()

	if errs := executor.Check(plan); len(errs) > 0 {
		for _, e := range errs {
			log.Error().Err(e).Msg("plan check failed")
		}
		os.Exit(1)
	}

	var eventStore storage.EventStore = storage.NewMemoryEventStore()
	if cfg.AuditEnabled {
		db := storage.NewPostgresDB(cfg.AuditDSN)
		bunStore := storage.NewBunEventStore(db)
		initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := bunStore.InitSchema(initCtx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("audit schema init failed, falling back to in-memory store")
		} else {
			eventStore = bunStore
		}
	}
	runID := uuid.New()

	sim := executor.NewSimulatedInterface()
	registerDemoCommands(sim)
	breaking := executor.NewBreakingInterface(sim, executor.DefaultCircuitBreakerConfig())

	exec := executor.NewExecutive(plan, breaking, log)
	sim.SetCallbacks(exec)

	exec.Observers().Add(monitoring.NewConsoleObserver(log))
	exec.Observers().Add(storage.NewAuditObserver(eventStore, runID))

	var hub *websocket.Hub
	if *dashboard {
		hub = websocket.NewHub(log)
		stop := make(chan struct{})
		go hub.Run(stop)
		defer close(stop)

		exec.Observers().Add(websocket.NewObserver(hub))
		auth := websocket.NewJWTAdminAuth(cfg.DashboardJWTSecret)
		handler := websocket.NewHandler(hub, auth, exec, log)
		server := &http.Server{Addr: cfg.DashboardAddr, Handler: handler.Mux()}
		go func() {
			log.Info().Str("addr", cfg.DashboardAddr).Msg("dashboard listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("dashboard server failed")
			}
		}()
		defer server.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rescanCtx, rescanCancel := context.WithCancel(ctx)
	go executor.RunBackoffRescan(rescanCtx, exec, executor.RescanPolicy{Interval: cfg.ArbiterRescanInterval})
	defer rescanCancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("interrupt received, cancelling")
		cancel()
	}()

	exec.Start(ctx)

	diagram, err := visualization.NewMermaidRenderer().Render(
		visualization.Wrap(plan.Root), visualization.DefaultRenderOptions())
	if err != nil {
		log.Error().Err(err).Msg("render failed")
	} else {
		fmt.Println(diagram)
	}

	fmt.Printf("%-16s %-12s %-10s %-10s\n", "NODE", "TYPE", "STATE", "OUTCOME")
	summarize(plan.Root)
}

func summarize(n *domain.Node) {
	fmt.Printf("%-16s %-12s %-10s %-10s\n", n.ID(), n.Type(), n.State(), n.Outcome())
	for _, c := range n.Children() {
		summarize(c)
	}
}

// registerDemoCommands installs the handlers the demo plan's Command
// nodes dispatch against, standing in for whatever real effect a
// deployed external interface would have instead.
func registerDemoCommands(sim *executor.SimulatedInterface) {
	sim.RegisterCommand("print_message", func(_ context.Context, args []domain.Value) (domain.Value, domain.CommandHandle, error) {
		msg, _ := args[0].Str()
		fmt.Println("print_message:", msg)
		return domain.Unknown(domain.TypeBoolean), domain.CommandSuccess, nil
	})
}

// buildDemoPlan assembles a two-step plan: a Command node that prints a
// greeting, followed by an Assignment node that only starts once the
// greeting has finished, recording completion into a plan variable.
func buildDemoPlan() *executor.Plan {
	table := domain.NewNodeTable()
	symbols := executor.NewSymbolTable()

	root := domain.NewNode("Top", domain.NodeTypeList, nil, table)
	root.SetScope(domain.NewScope(root))

	greet := domain.NewNode("Greet", domain.NodeTypeCommand, root, table)
	greet.SetScope(domain.NewScope(greet))
	greet.SetBody(domain.NewCommandBody(
		"print_message",
		[]domain.Expression{domain.NewConstant(domain.StringValue("hello from plexil"))},
		nil, nil,
	))

	done := domain.NewVariable("done", domain.TypeBoolean)
	markDone := domain.NewNode("MarkDone", domain.NodeTypeAssignment, root, table)
	markDone.SetScope(domain.NewScope(markDone))
	markDone.Scope().Declare("done", done)
	markDone.SetBody(domain.NewAssignmentBody(done, domain.NewConstant(domain.BooleanValue(true))))
	markDone.SetCondition(domain.SlotStart, domain.NewOperatorApplication(
		domain.OpNodeStateEQ, greet.StateVariable(), domain.NewConstant(domain.NodeStateValue(domain.StateFinished)),
	))

	domain.FinalizePlan(root)

	plan := executor.NewPlan(root, table, symbols)
	return plan
}
