package migrations

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/go-faster/errors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

// Runner applies embedded goose migrations over a lib/pq connection.
type Runner struct {
	fsys   fs.FS
	logger *logrus.Logger
}

func NewRunner(fsys fs.FS, logger *logrus.Logger) *Runner {
	return &Runner{fsys: fsys, logger: logger}
}

func (r *Runner) open(dsn string) (*sql.DB, error) {
	goose.SetBaseFS(r.fsys)
	goose.SetLogger(gooseLogger{r.logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, errors.Wrap(err, "set goose dialect")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return db, nil
}

func (r *Runner) Up(ctx context.Context, dsn string) error {
	db, err := r.open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func (r *Runner) Down(ctx context.Context, dsn string) error {
	db, err := r.open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := goose.DownContext(ctx, db, "."); err != nil {
		return errors.Wrap(err, "roll back migration")
	}
	return nil
}

func (r *Runner) Status(ctx context.Context, dsn string) error {
	db, err := r.open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.StatusContext(ctx, db, ".")
}

// Files returns the embedded migration files in apply order.
func (r *Runner) Files() ([]string, error) {
	goose.SetBaseFS(r.fsys)
	migrations, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		return nil, errors.Wrap(err, "collect migrations")
	}
	out := make([]string, 0, len(migrations))
	for _, m := range migrations {
		out = append(out, m.Source)
	}
	return out, nil
}

type gooseLogger struct {
	log *logrus.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	if l.log == nil {
		logrus.Fatalf(format, v...)
	}
	l.log.Fatalf(format, v...)
}

func (l gooseLogger) Printf(format string, v ...any) {
	if l.log == nil {
		logrus.Infof(format, v...)
		return
	}
	l.log.Infof(format, v...)
}
