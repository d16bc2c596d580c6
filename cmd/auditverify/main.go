// Command auditverify checks the hash chains stored in a SQLite audit sink.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/example/safi-bank/pkg/audit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_ = godotenv.Load()
	target := flag.String("sink", os.Getenv("AUDIT_SINK"), "audit sink, sqlite://<path>")
	flag.Parse()

	path, ok := strings.CutPrefix(*target, "sqlite://")
	if !ok || path == "" {
		logger.Error("a sqlite:// sink is required", "sink", *target)
		os.Exit(2)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		logger.Error("failed to open audit database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sink, err := audit.NewSQLiteSink(db)
	if err != nil {
		logger.Error("failed to open audit sink", "error", err)
		os.Exit(1)
	}
	entries, err := sink.Load(context.Background())
	if err != nil {
		logger.Error("failed to load entries", "error", err)
		os.Exit(1)
	}

	broken := 0
	for i, chain := range audit.SplitChains(entries) {
		valid := audit.VerifyChain(chain)
		if !valid {
			broken++
		}
		logger.Info("chain",
			"index", i,
			"entries", len(chain),
			"first_sequence", chain[0].Sequence,
			"head", chain[len(chain)-1].Hash,
			"valid", valid,
		)
	}

	if broken > 0 {
		logger.Error("audit log tampered", "broken_chains", broken)
		os.Exit(1)
	}
	logger.Info("audit log verified", "entries", len(entries))
}
