// Command populate seeds the jobs table from a JSON file of mock applications.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job"
	jobrepo "github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/repo"
	userrepo "github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/utilities"
)

func main() {
	_ = godotenv.Load()

	file := flag.String("file", "mock_data.json", "JSON array of jobs to insert")
	owner := flag.String("owner", os.Getenv("POPULATE_OWNER_ID"), "id of the user who owns the seeded jobs")
	flag.Parse()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	if err := run(context.Background(), sugar, *file, *owner); err != nil {
		sugar.Errorw("populate failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sugar *zap.SugaredLogger, file, rawOwner string) error {
	ownerID, err := utilities.ParseID(rawOwner)
	if err != nil {
		return fmt.Errorf("owner %q: %w", rawOwner, err)
	}
	inputs, err := readInputs(file)
	if err != nil {
		return err
	}

	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer db.Close()
	sugar.Info("connected to db")

	if err := ensureTables(ctx, db); err != nil {
		return err
	}
	repo := jobrepo.NewJobRepo(db)
	ids, err := utilities.NewIDGenerator(utilities.NodeFromEnv())
	if err != nil {
		return err
	}
	svc := job.NewService(repo, ids)
	owner := auth.Identity{UserID: ownerID}
	for i, in := range inputs {
		if _, err := svc.Create(ctx, owner, in); err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}
	}
	sugar.Infow("data is populated", "jobs", len(inputs), "owner", ownerID)
	return nil
}

// ensureTables creates users before jobs, which references it.
func ensureTables(ctx context.Context, db *sqlx.DB) error {
	if err := userrepo.NewUserRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure users table: %w", err)
	}
	if err := jobrepo.NewJobRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure jobs table: %w", err)
	}
	return nil
}

func readInputs(path string) ([]job.CreateInput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var inputs []job.CreateInput
	if err := json.Unmarshal(b, &inputs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return inputs, nil
}
