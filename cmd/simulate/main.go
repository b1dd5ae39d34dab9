package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"github.com/kellerdav/classroom-sim/internal/emotion"
	"github.com/kellerdav/classroom-sim/internal/provider"
	"github.com/kellerdav/classroom-sim/internal/report"
	"github.com/kellerdav/classroom-sim/internal/scenario"
	"github.com/kellerdav/classroom-sim/internal/session"
)

// #region main

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("[SIM] loaded .env")
	}

	scenarioPath := envOr("CLASSROOM_SCENARIO", "scenario.toml")
	configPath := envOr("CLASSROOM_CONFIG", "classroom.toml")
	dbPath := envOr("CLASSROOM_DB", "classroom.db")
	providerAddr := os.Getenv("CLASSROOM_PROVIDER_ADDR")
	providerKey := os.Getenv("CLASSROOM_PROVIDER_KEY")

	store, err := report.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	sim := &repl{
		scenarioPath: scenarioPath,
		configPath:   configPath,
		store:        store,
	}
	if providerAddr != "" {
		decider := provider.NewHTTPDecider(providerAddr, providerKey)
		sim.decider = provider.NewAsync(decider, 10*time.Second, 1.0)
		log.Printf("[SIM] external decision provider at %s", providerAddr)
	}

	if err := sim.start(); err != nil {
		log.Fatalf("failed to start session: %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("failed to create watcher: %v", err)
	}
	defer watcher.Close()
	if err := watcher.Add(scenarioPath); err != nil {
		log.Printf("[SIM] not watching %s: %v", scenarioPath, err)
	} else {
		go sim.watch(watcher)
	}

	fmt.Println("Classroom simulator ready.")
	fmt.Printf("  Scenario: %s | DB: %s\n", scenarioPath, dbPath)
	fmt.Println("Commands: tick [s] | run <s> | action <kind> [agent] | swap <a> <b> | status | end | restart | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := sim.execute(line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}

	if !sim.ctrl.Ended() {
		printReport(sim.ctrl.EndSession())
	}
}

// #endregion main

// #region repl

type repl struct {
	scenarioPath string
	configPath   string
	store        *report.Store
	decider      *provider.Async
	ctrl         *session.Controller
	stale        atomic.Bool // scenario file changed since session start
}

// start loads the scenario fresh from disk and opens a new session.
func (r *repl) start() error {
	sc, err := scenario.Load(r.scenarioPath)
	if err != nil {
		return err
	}
	config, err := loadConfig(r.configPath)
	if err != nil {
		return err
	}
	ctrl, err := session.NewController(sc, config)
	if err != nil {
		return err
	}
	if err := ctrl.AttachStore(r.store); err != nil {
		return err
	}
	if r.decider != nil {
		ctrl.AttachProvider(r.decider)
	}
	r.ctrl = ctrl
	r.stale.Store(false)
	return nil
}

// watch flags scenario edits; they apply on the next restart, never to
// the running session.
func (r *repl) watch(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				r.stale.Store(true)
				log.Printf("[SIM] %s changed on disk, 'restart' applies it", ev.Name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("[SIM] watch error: %v", err)
		}
	}
}

func (r *repl) execute(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "tick":
		dt := 1.0
		if len(args) > 0 {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil || v <= 0 {
				return fmt.Errorf("tick wants a positive number of seconds")
			}
			dt = v
		}
		r.ctrl.Tick(dt)
		r.drainEvents()
		return nil

	case "run":
		if len(args) != 1 {
			return fmt.Errorf("usage: run <seconds>")
		}
		total, err := strconv.ParseFloat(args[0], 64)
		if err != nil || total <= 0 {
			return fmt.Errorf("run wants a positive number of seconds")
		}
		for elapsed := 0.0; elapsed < total; elapsed += 0.5 {
			r.ctrl.Tick(0.5)
			r.drainEvents()
		}
		return nil

	case "action":
		if len(args) == 0 {
			return fmt.Errorf("usage: action <kind> [agent-id]")
		}
		kind := emotion.ActionKind(args[0])
		if !kind.Known() {
			return fmt.Errorf("unknown action %q", args[0])
		}
		target := ""
		if len(args) > 1 {
			target = args[1]
		}
		if _, err := r.ctrl.DispatchAction(kind, target, ""); err != nil {
			return err
		}
		r.drainEvents()
		return nil

	case "swap":
		if len(args) != 2 {
			return fmt.Errorf("usage: swap <agent-a> <agent-b>")
		}
		if err := r.ctrl.SwapSeats(args[0], args[1]); err != nil {
			return err
		}
		r.drainEvents()
		return nil

	case "status":
		r.printStatus()
		return nil

	case "end":
		printReport(r.ctrl.EndSession())
		return nil

	case "restart":
		if !r.ctrl.Ended() {
			printReport(r.ctrl.EndSession())
		}
		if err := r.start(); err != nil {
			return err
		}
		fmt.Printf("new session %s\n", r.ctrl.SessionID())
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (r *repl) drainEvents() {
	for _, ev := range r.ctrl.Events() {
		switch {
		case ev.From != "" || ev.To != "":
			fmt.Printf("  [%6.1fs] %s: %s -> %s\n", ev.SimTime, ev.AgentID, ev.From, ev.To)
		case ev.Reason != "":
			fmt.Printf("  [%6.1fs] %s: %s (%s)\n", ev.SimTime, ev.AgentID, ev.Type, ev.Reason)
		default:
			fmt.Printf("  [%6.1fs] %s: %s\n", ev.SimTime, ev.AgentID, ev.Type)
		}
	}
}

func (r *repl) printStatus() {
	m := r.ctrl.Metrics()
	fmt.Printf("t=%.1fs engagement=%.0f%% disruptions=%d participating=%d\n",
		r.ctrl.Clock(), m.Engagement*100, m.Disruptions, m.Participating)
	if r.stale.Load() {
		fmt.Println("note: scenario file changed on disk, 'restart' applies it")
	}

	fmt.Printf("%-8s %-10s %-11s %5s %5s %5s %5s %5s\n",
		"Agent", "Name", "State", "Hap", "Sad", "Fru", "Bor", "Ang")
	for _, snap := range r.ctrl.Snapshots() {
		state := string(snap.State)
		if !snap.Active {
			state = "removed"
		} else if snap.OnBreak {
			state = "on break"
		}
		e := snap.Emotion
		fmt.Printf("%-8s %-10s %-11s %5.1f %5.1f %5.1f %5.1f %5.1f\n",
			snap.ID, snap.Name, state,
			e.Happiness, e.Sadness, e.Frustration, e.Boredom, e.Anger)
	}
}

func printReport(rep report.SessionReport) {
	fmt.Printf("session %s ended\n", rep.SessionID)
	fmt.Printf("  actions:     %d (%d positive, %d negative)\n",
		rep.TotalActions, rep.PositiveActions, rep.NegativeActions)
	fmt.Printf("  engagement:  %.0f%%\n", rep.AverageEngagement*100)
	fmt.Printf("  disruptions: %d\n", rep.TotalDisruptions)
	fmt.Printf("  score:       %.1f / 100\n", rep.Score)
}

// #endregion repl

// #region helpers

// loadConfig overlays the TOML config file, when present, on the tuned
// defaults. A missing file is not an error.
func loadConfig(path string) (session.Config, error) {
	config := session.DefaultConfig()
	if _, err := os.Stat(path); err != nil {
		return config, nil
	}
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return session.Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return config, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
