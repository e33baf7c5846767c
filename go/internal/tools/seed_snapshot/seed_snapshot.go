package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/purplehaze/glorynews/go/internal/dbconfig"
	"github.com/purplehaze/glorynews/go/internal/ladder"
	"github.com/purplehaze/glorynews/go/internal/models"
	"github.com/purplehaze/glorynews/go/internal/sources"
)

// Loads a ladder JSON file (a StandingsTable, or a bare entry list) into the
// snapshot archive so a fresh deployment has a last known good table.
//
//	go run ./go/internal/tools/seed_snapshot ladder.json
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: seed_snapshot <ladder.json>")
		os.Exit(2)
	}

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	table, err := decodeTable(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Repair it the same way fetched tables are repaired
	validator := ladder.NewValidator(sources.NewTeamMatcher(), sources.NewRandomFormFiller(), clockwork.NewRealClock())
	if err := validator.Check(table); err != nil {
		fmt.Fprintf(os.Stderr, "refusing to seed: %v\n", err)
		os.Exit(1)
	}
	table = validator.Validate(table)

	// 3) Connect using shared dbconfig
	ctx := context.Background()
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 4) Archive
	repo := ladder.NewRepository(pool, ladder.DefaultSnapshotRetention)
	if err := repo.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "prepare schema: %v\n", err)
		os.Exit(1)
	}
	if err := repo.SaveSnapshot(ctx, table); err != nil {
		fmt.Fprintf(os.Stderr, "save snapshot: %v\n", err)
		os.Exit(1)
	}

	// 5) Print summary
	fmt.Printf(
		"Snapshot seed complete: %d teams, source %q, season %s\n",
		len(table.Entries), table.Source.Name, table.Season,
	)
}

func decodeTable(data []byte) (*models.StandingsTable, error) {
	var table models.StandingsTable
	if err := json.Unmarshal(data, &table); err == nil && len(table.Entries) > 0 {
		if table.Source.Name == "" {
			table.Source.Name = "Seed"
		}
		return &table, nil
	}

	var entries []models.StandingsEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return &models.StandingsTable{
		Entries: entries,
		Source:  models.Provenance{Name: "Seed"},
	}, nil
}
