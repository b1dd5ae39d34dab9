package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/kellerdav/classroom-sim/internal/archive"
	"github.com/kellerdav/classroom-sim/internal/report"
)

// #region main

func main() {
	dbPath := flag.String("db", "classroom.db", "path to the session database")
	last := flag.Int("last", 20, "show N most recent sessions")
	sessionID := flag.String("session", "", "show single session detail")
	exportDir := flag.String("export", "", "write the session as a zstd archive into this directory")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	store, err := report.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *sessionID != "" {
		if err := runDetailMode(store, *sessionID, *exportDir, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if *exportDir != "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --session <id> --export <dir>")
		os.Exit(2)
	}
	if err := runListMode(store, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	SessionID string   `json:"session_id"`
	Scenario  string   `json:"scenario"`
	StartedAt string   `json:"started_at"`
	Ended     bool     `json:"ended"`
	Score     *float64 `json:"score,omitempty"`
}

func runListMode(store *report.Store, last int, jsonOut bool) error {
	sessions, err := store.ListSessions(last)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]listRow, len(sessions))
	for i, s := range sessions {
		row := listRow{
			SessionID: s.SessionID,
			Scenario:  s.Scenario,
			StartedAt: s.StartedAt.Format("2006-01-02T15:04:05Z"),
			Ended:     s.Ended,
		}
		if s.Ended {
			if rep, err := store.GetReport(s.SessionID); err == nil {
				score := rep.Score
				row.Score = &score
			}
		}
		rows[i] = row
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-20s  %-20s  %-7s  %s\n",
		"Session", "Scenario", "Started", "Ended", "Score")
	for _, r := range rows {
		score := "—"
		if r.Score != nil {
			score = fmt.Sprintf("%.1f", *r.Score)
		}
		fmt.Printf("%-12s  %-20s  %-20s  %-7v  %s\n",
			shortID(r.SessionID), r.Scenario, r.StartedAt, r.Ended, score)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(store *report.Store, sessionID, exportDir string, jsonOut bool) error {
	actions, err := store.ActionLog(sessionID)
	if err != nil {
		return err
	}
	rep, repErr := store.GetReport(sessionID)

	if exportDir != "" {
		ex := archive.Export{
			Record: report.SessionRecord{
				SessionID: sessionID,
				Actions:   actions,
			},
		}
		if repErr == nil {
			ex.Report = &rep
			ex.Record.StartTime = rep.StartTime
			ex.Record.EndTime = rep.EndTime
			ex.Record.Ended = true
		}
		path, err := archive.Write(ex, exportDir)
		if err != nil {
			return err
		}
		fmt.Printf("exported %s\n", path)
		return nil
	}

	if jsonOut {
		out := struct {
			SessionID string                 `json:"session_id"`
			Actions   []report.TeacherAction `json:"actions"`
			Report    *report.SessionReport  `json:"report,omitempty"`
		}{SessionID: sessionID, Actions: actions}
		if repErr == nil {
			out.Report = &rep
		}
		return printJSON(out)
	}

	fmt.Printf("Session: %s\n", sessionID)
	if repErr == nil {
		fmt.Printf("Score:   %.1f  (engagement %.0f%%, %d disruptions)\n",
			rep.Score, rep.AverageEngagement*100, rep.TotalDisruptions)
	} else {
		fmt.Println("Score:   session still open")
	}

	fmt.Printf("\n%-10s  %-22s  %-8s  %s\n", "Sim Time", "Action", "Target", "Context")
	for _, a := range actions {
		target := a.TargetID
		if a.ClassWide() {
			target = "(class)"
		}
		fmt.Printf("%9.1fs  %-22s  %-8s  %s\n", a.SimTime, a.Kind, target, a.ContextLabel)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion output
